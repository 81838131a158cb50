package fuzle

// ReadUint16 reads a little endian uint16 at off and returns it with the
// offset just past it. Nothing is read if the value would cross the end of buf.
func ReadUint16(buf []byte, off int) (uint16, int, error) {
	if off < 0 || off > len(buf)-2 {
		return 0, off, newError(KindOutOfBounds, off, "not enough space in buffer for uint16 (length %d)", len(buf))
	}
	return uint16(buf[off]) | uint16(buf[off+1])<<8, off + 2, nil
}

// ReadUint32 reads a little endian uint32 at off as two uint16 halves, low
// word first. The full width is checked before either half is read.
func ReadUint32(buf []byte, off int) (uint32, int, error) {
	if off < 0 || off > len(buf)-4 {
		return 0, off, newError(KindOutOfBounds, off, "not enough space in buffer for uint32 (length %d)", len(buf))
	}
	lo, next, err := ReadUint16(buf, off)
	if err != nil {
		return 0, off, err
	}
	hi, next, err := ReadUint16(buf, next)
	if err != nil {
		return 0, off, err
	}
	return uint32(lo) | uint32(hi)<<16, next, nil
}

// cursor walks buf front to back. off never exceeds len(buf).
type cursor struct {
	buf []byte
	off int
}

func newCursor(buf []byte, off int) *cursor {
	return &cursor{buf: buf, off: off}
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.off
}

func (c *cursor) u16() (uint16, error) {
	v, next, err := ReadUint16(c.buf, c.off)
	if err != nil {
		return 0, err
	}
	c.off = next
	return v, nil
}

func (c *cursor) u32() (uint32, error) {
	v, next, err := ReadUint32(c.buf, c.off)
	if err != nil {
		return 0, err
	}
	c.off = next
	return v, nil
}

// tag reads a 4 byte chunk signature
func (c *cursor) tag() ([4]byte, error) {
	var t [4]byte
	if c.remaining() < 4 {
		return t, newError(KindOutOfBounds, c.off, "not enough space in buffer for chunk signature (length %d)", len(c.buf))
	}
	copy(t[:], c.buf[c.off:c.off+4])
	c.off += 4
	return t, nil
}
