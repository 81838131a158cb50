package fuzle

import (
	"bytes"

	"github.com/go-audio/riff"
)

// FUZ preamble layout
const (
	FuzMagic        = "FUZE"
	FuzPreambleSize = 12 // magic + version + lip size
)

// location is where a locator found the RIFF stream
type location struct {
	mode       Mode
	lipOffset  int
	lipSize    int
	riffOffset int // offset of the "RIFF" signature
	start      int // offset just past the signature, where the decoder begins
}

// HasFuzMagic reports whether buf starts with the FUZ container magic
func HasFuzMagic(buf []byte) bool {
	return bytes.HasPrefix(buf, []byte(FuzMagic))
}

// isTruncatedMagic reports whether buf is a non empty proper prefix of the FUZ magic
func isTruncatedMagic(buf []byte) bool {
	return len(buf) > 0 && len(buf) < len(FuzMagic) && bytes.HasPrefix([]byte(FuzMagic), buf)
}

func locate(buf []byte, mode Mode) (location, error) {
	switch mode {
	case ModeAuto:
		// a FUZ file cut inside its magic is a truncated preamble
		if HasFuzMagic(buf) || isTruncatedMagic(buf) {
			return locatePrefixed(buf)
		}
		return locateScan(buf)
	case ModePrefixed:
		return locatePrefixed(buf)
	case ModeScan:
		return locateScan(buf)
	default:
		return location{}, newError(KindUnsupportedFormat, -1, "unknown locator %s", mode)
	}
}

// locatePrefixed skips the 12 byte FUZ preamble and the lip-sync data it
// declares. The RIFF signature must follow immediately.
func locatePrefixed(buf []byte) (location, error) {
	c := newCursor(buf, 0)

	magic, err := c.tag()
	if err != nil {
		return location{}, err
	}
	if string(magic[:]) != FuzMagic {
		return location{}, newError(KindNotContainerFormat, 0, "expected %s magic, got %q (hex: %x)", FuzMagic, magic[:], magic[:])
	}

	// version, unused
	if _, err := c.u32(); err != nil {
		return location{}, err
	}

	lipSize, err := c.u32()
	if err != nil {
		return location{}, err
	}
	if uint64(lipSize) > uint64(c.remaining()) {
		return location{}, newError(KindOutOfBounds, c.off, "lip-sync prefix of %d bytes exceeds buffer (length %d)", lipSize, len(buf))
	}

	loc := location{
		mode:       ModePrefixed,
		lipOffset:  c.off,
		lipSize:    int(lipSize),
		riffOffset: c.off + int(lipSize),
	}

	c.off = loc.riffOffset
	sig, err := c.tag()
	if err != nil {
		return location{}, err
	}
	if sig != riff.RiffID {
		return location{}, newError(KindSignatureNotFound, loc.riffOffset, "no RIFF section after lip-sync data, got %q", sig[:])
	}
	loc.start = c.off

	return loc, nil
}

// locateScan finds the first "RIFF" signature anywhere in buf
func locateScan(buf []byte) (location, error) {
	idx := bytes.Index(buf, riff.RiffID[:])
	if idx < 0 {
		return location{}, newError(KindSignatureNotFound, -1, "scanned %d bytes", len(buf))
	}
	return location{
		mode:       ModeScan,
		riffOffset: idx,
		start:      idx + len(riff.RiffID),
	}, nil
}
