package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"

	"github.com/davidruble/fuzle/internal/container"
	"github.com/davidruble/fuzle/internal/logging"
	"github.com/davidruble/fuzle/internal/probe"
	"github.com/davidruble/fuzle/pkg/fuzle"
)

func voiceStream(seconds uint32) []byte {
	return container.BuildXWMA(&fuzle.Header{
		FormatCode:    container.FormatWMAv2,
		Channels:      1,
		SampleRate:    22050,
		BitsPerSample: 16,
		PacketTable:   []uint32{seconds * 44100},
	}, nil)
}

// writeTree lays out a small voice folder:
//
//	root/a.fuz           1s
//	root/sub/b.xwm       2s
//	root/sub/broken.fuz  no FUZE magic
//	root/sub/notes.txt   ignored
func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0755))

	files := map[string][]byte{
		"a.fuz":          container.BuildFUZ([]byte("lip"), voiceStream(1)),
		"sub/b.xwm":      voiceStream(2),
		"sub/broken.fuz": []byte("definitely not a voice file"),
		"sub/notes.txt":  []byte("hello"),
	}
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), data, 0644))
	}
	return root
}

func newRunner(options Options) *Runner {
	log := logging.Discard()
	return NewRunner(probe.New(fuzle.ModeAuto, log), options, log)
}

func TestCollect(t *testing.T) {
	root := writeTree(t)
	r := newRunner(Options{})

	files, err := r.Collect([]string{root, filepath.Join(root, "sub", "notes.txt"), filepath.Join(root, "a.fuz")})
	require.NoError(t, err)
	require.Equal(t, []File{
		{Path: filepath.Join(root, "a.fuz")},
		{Path: filepath.Join(root, "sub", "b.xwm"), RelDir: "sub"},
		{Path: filepath.Join(root, "sub", "broken.fuz"), RelDir: "sub"},
		// explicit files are kept whatever their extension
		{Path: filepath.Join(root, "sub", "notes.txt")},
	}, files)

	files, err = newRunner(Options{Extensions: []string{".XWM"}}).Collect([]string{root})
	require.NoError(t, err)
	require.Equal(t, []File{{Path: filepath.Join(root, "sub", "b.xwm"), RelDir: "sub"}}, files)

	// relative to the directory given, not to the first one
	files, err = r.Collect([]string{filepath.Join(root, "sub")})
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Empty(t, files[0].RelDir)

	_, err = r.Collect([]string{filepath.Join(root, "missing")})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun(t *testing.T) {
	root := writeTree(t)
	errorDir := filepath.Join(t.TempDir(), "errors")

	summary, err := newRunner(Options{Workers: 4, ErrorDir: errorDir}).Run(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, summary.Results, 3)
	require.Equal(t, 1, summary.Failed)

	require.Equal(t, filepath.Join(root, "a.fuz"), summary.Results[0].Path)
	require.InDelta(t, 1.0, summary.Results[0].Info.Duration, 1e-9)
	require.Equal(t, 3, summary.Results[0].Info.LipSize)

	require.InDelta(t, 2.0, summary.Results[1].Info.Duration, 1e-9)

	broken := summary.Results[2]
	require.Nil(t, broken.Info)
	require.ErrorIs(t, broken.Err, fuzle.ErrNotContainerFormat)

	// the aggregated error names the failing file
	var merr *multierror.Error
	require.ErrorAs(t, summary.Err(), &merr)
	require.Len(t, merr.Errors, 1)
	require.ErrorContains(t, merr.Errors[0], "broken.fuz")
	require.ErrorIs(t, summary.Err(), fuzle.ErrNotContainerFormat)

	saved, err := os.ReadFile(filepath.Join(errorDir, "sub", "broken.fuz"))
	require.NoError(t, err)
	require.Equal(t, "definitely not a voice file", string(saved))
}

func TestRun_ErrorDirKeepsFolders(t *testing.T) {
	root := t.TempDir()
	for _, voice := range []string{"femalenord", "malenord"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, voice), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(root, voice, "line.fuz"), []byte(voice), 0644))
	}
	errorDir := filepath.Join(t.TempDir(), "errors")

	summary, err := newRunner(Options{Workers: 2, ErrorDir: errorDir}).Run(context.Background(), []string{root})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Failed)

	for _, voice := range []string{"femalenord", "malenord"} {
		saved, err := os.ReadFile(filepath.Join(errorDir, voice, "line.fuz"))
		require.NoError(t, err)
		require.Equal(t, voice, string(saved))
	}
}

func TestRun_NoWrite(t *testing.T) {
	root := writeTree(t)
	errorDir := filepath.Join(t.TempDir(), "errors")

	summary, err := newRunner(Options{ErrorDir: errorDir, NoWrite: true}).Run(context.Background(), []string{root})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Failed)
	require.NoDirExists(t, errorDir)
}

func TestRun_AllGood(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "ok.xwm")
	require.NoError(t, os.WriteFile(path, voiceStream(3), 0644))

	summary, err := newRunner(Options{Workers: 1}).Run(context.Background(), []string{path})
	require.NoError(t, err)
	require.Zero(t, summary.Failed)
	require.NoError(t, summary.Err())
}

func TestRun_Cancelled(t *testing.T) {
	root := writeTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(Options{Workers: 2}).Run(ctx, []string{root})
	require.ErrorIs(t, err, context.Canceled)
}
