package fuzle

import (
	"log/slog"
)

// Chunk signatures of an xWMA stream
var (
	XWMAID = [4]byte{'X', 'W', 'M', 'A'}
	DPDSID = [4]byte{'d', 'p', 'd', 's'}
)

// decodeHeader reads the xWMA header starting at the RIFF chunk size. The
// "fmt " and "dpds" chunks must be adjacent, which is how the asset pipeline
// writes them.
func decodeHeader(c *cursor, log *slog.Logger) (Header, error) {
	var hdr Header
	var err error

	if hdr.RIFFSize, err = c.u32(); err != nil {
		return Header{}, err
	}

	formOff := c.off
	form, err := c.tag()
	if err != nil {
		return Header{}, err
	}
	if form != XWMAID {
		log.Debug("invalid RIFF form type", "offset", formOff, "got", string(form[:]))
		return Header{}, newError(KindUnsupportedFormat, formOff, "expected XWMA, got %q (hex: %x)", form[:], form[:])
	}

	// "fmt " signature, not checked
	if _, err := c.tag(); err != nil {
		return Header{}, err
	}
	if hdr.FormatChunkSize, err = c.u32(); err != nil {
		return Header{}, err
	}
	if hdr.FormatCode, err = c.u16(); err != nil {
		return Header{}, err
	}
	if hdr.Channels, err = c.u16(); err != nil {
		return Header{}, err
	}
	if hdr.SampleRate, err = c.u32(); err != nil {
		return Header{}, err
	}
	if hdr.ByteRate, err = c.u32(); err != nil {
		return Header{}, err
	}
	if hdr.BlockAlign, err = c.u16(); err != nil {
		return Header{}, err
	}
	if hdr.BitsPerSample, err = c.u16(); err != nil {
		return Header{}, err
	}
	if hdr.ExtraSize, err = c.u16(); err != nil {
		return Header{}, err
	}

	log.Debug("format chunk",
		"format", hdr.FormatCode,
		"channels", hdr.Channels,
		"sample_rate", hdr.SampleRate,
		"bits_per_sample", hdr.BitsPerSample)

	dpdsOff := c.off
	dpds, err := c.tag()
	if err != nil {
		return Header{}, err
	}
	if dpds != DPDSID {
		log.Debug("dpds data not present", "offset", dpdsOff, "got", string(dpds[:]))
		return Header{}, newError(KindPacketTableMissing, dpdsOff, "expected dpds, got %q (hex: %x)", dpds[:], dpds[:])
	}

	sizeOff := c.off
	if hdr.PacketTableSize, err = c.u32(); err != nil {
		return Header{}, err
	}
	if hdr.PacketTableSize < 4 || hdr.PacketTableSize%4 != 0 {
		return Header{}, newError(KindInvalidPacketTable, sizeOff, "packet table size %d is not a positive multiple of 4", hdr.PacketTableSize)
	}
	if uint64(hdr.PacketTableSize) > uint64(c.remaining()) {
		return Header{}, newError(KindOutOfBounds, c.off, "packet table of %d bytes exceeds buffer (length %d)", hdr.PacketTableSize, len(c.buf))
	}

	hdr.PacketTable = make([]uint32, hdr.PacketTableSize/4)
	for i := range hdr.PacketTable {
		if hdr.PacketTable[i], err = c.u32(); err != nil {
			return Header{}, err
		}
	}

	log.Debug("packet table",
		"entries", len(hdr.PacketTable),
		"decoded_bytes", hdr.DecodedBytes())

	return hdr, nil
}
