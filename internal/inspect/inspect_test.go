package inspect

import (
	"bytes"
	"testing"

	"github.com/go-audio/riff"
	"github.com/stretchr/testify/require"

	"github.com/davidruble/fuzle/internal/container"
	"github.com/davidruble/fuzle/pkg/fuzle"
)

func stereoHeader() *fuzle.Header {
	return &fuzle.Header{
		FormatCode:    container.FormatWMAv2,
		Channels:      2,
		SampleRate:    44100,
		ByteRate:      6000,
		BlockAlign:    2230,
		BitsPerSample: 16,
		PacketTable:   []uint32{176400, 352800},
	}
}

func TestInspect(t *testing.T) {
	stream := container.BuildXWMA(stereoHeader(), []byte{1, 2, 3})
	buf := container.BuildFUZ([]byte("lipdata!"), stream)

	report, err := Inspect(fuzle.NewParser(), "hello.fuz", buf)
	require.NoError(t, err)

	require.Equal(t, "hello.fuz", report.Path)
	require.Equal(t, "prefixed", report.Mode)
	require.Equal(t, 8, report.LipSize)
	require.Equal(t, 20, report.RIFFOffset)
	require.Equal(t, "XWMA", report.Form)
	require.Equal(t, uint32(len(stream)-8), report.RIFFSize)
	require.Equal(t, uint16(2), report.Header.Channels)
	require.InDelta(t, 2.0, report.Duration, 1e-9)

	require.Equal(t, []Chunk{
		{ID: "fmt ", Offset: 12, Size: 18},
		{ID: "dpds", Offset: 38, Size: 8},
		// odd payloads are padded to a word boundary
		{ID: "data", Offset: 54, Size: 4},
	}, report.Chunks)

	out := report.String()
	require.Contains(t, out, "locator:     prefixed")
	require.Contains(t, out, "lip data:    8 bytes")
	require.Contains(t, out, "2 channels @ 44100 Hz / 16 bits")
	require.Contains(t, out, "duration:    2.000s")
	require.NotContains(t, out, "truncated")
}

func TestInspect_BareStream(t *testing.T) {
	stream := container.BuildXWMA(stereoHeader(), nil)

	report, err := Inspect(fuzle.NewParser(), "hello.xwm", stream)
	require.NoError(t, err)
	require.Equal(t, "scan", report.Mode)
	require.Zero(t, report.LipSize)
	require.Zero(t, report.RIFFOffset)
	require.Len(t, report.Chunks, 2)
	require.NotContains(t, report.String(), "lip data")
}

func TestInspect_ParseError(t *testing.T) {
	_, err := Inspect(fuzle.NewParser(), "empty.xwm", []byte("nothing to see"))
	require.ErrorIs(t, err, fuzle.ErrSignatureNotFound)
}

func TestChunks_Truncated(t *testing.T) {
	stream := container.BuildXWMA(stereoHeader(), make([]byte, 100))
	// cut the data chunk short
	stream = stream[:len(stream)-40]

	p := riff.New(bytes.NewReader(stream))
	require.NoError(t, p.ParseHeaders())

	chunks, err := Chunks(p, len(stream))
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	require.False(t, chunks[1].Truncated)
	require.Equal(t, "data", chunks[2].ID)
	require.Equal(t, 100, chunks[2].Size)
	require.True(t, chunks[2].Truncated)
}

func TestChunks_TrailingBytes(t *testing.T) {
	stream := container.BuildXWMA(stereoHeader(), nil)
	// two stray bytes are not enough for another chunk header
	stream = append(stream, 0, 0)

	p := riff.New(bytes.NewReader(stream))
	require.NoError(t, p.ParseHeaders())

	chunks, err := Chunks(p, len(stream))
	require.NoError(t, err)
	require.Len(t, chunks, 2)
}
