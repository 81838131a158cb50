package fuzle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidruble/fuzle/pkg/fuzle"
)

func TestReadUint16(t *testing.T) {
	buf := []byte{0x34, 0x12, 0xFF, 0xFF}

	v, next, err := fuzle.ReadUint16(buf, 0)
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), v)
	require.Equal(t, 2, next)

	v, next, err = fuzle.ReadUint16(buf, 2)
	require.NoError(t, err)
	require.Equal(t, uint16(0xFFFF), v)
	require.Equal(t, 4, next)

	for _, off := range []int{-1, 3, 4, 100} {
		_, next, err := fuzle.ReadUint16(buf, off)
		require.ErrorIs(t, err, fuzle.ErrOutOfBounds, "offset %d", off)
		require.Equal(t, off, next)
	}
}

func TestReadUint32(t *testing.T) {
	// low word 0x5678, high word 0x1234
	buf := []byte{0x78, 0x56, 0x34, 0x12, 0x01}

	v, next, err := fuzle.ReadUint32(buf, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(0x12345678), v)
	require.Equal(t, 4, next)

	v, _, err = fuzle.ReadUint32(buf, 1)
	require.NoError(t, err)
	require.Equal(t, uint32(0x01123456), v)

	// 2 bytes would fit a uint16 but not the whole uint32
	_, next, err = fuzle.ReadUint32(buf, 3)
	require.ErrorIs(t, err, fuzle.ErrOutOfBounds)
	require.Equal(t, 3, next)

	_, _, err = fuzle.ReadUint32(nil, 0)
	require.ErrorIs(t, err, fuzle.ErrOutOfBounds)
}
