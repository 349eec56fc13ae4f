// Package buf contains the bounds-checked byte cursor every decoder in this
// module reads through, plus overflow-safe arithmetic helpers. Class file
// integers are big-endian throughout.
package buf

import (
	"encoding/binary"
	"math"

	"github.com/Earthcomputer/classfile/pkg/types"
)

// Cursor is a forward reader over a borrowed byte buffer. Every read either
// succeeds and advances by exactly the consumed byte count, or fails with a
// positioned EOF error and leaves the position unspecified; callers must
// abort on error, not retry. Reads never allocate; ReadBytes returns a
// sub-slice of the underlying buffer.
type Cursor struct {
	data []byte
	pos  int
	// base offsets positions in errors, so a cursor over a sub-region
	// still reports file-absolute offsets.
	base int
}

// New returns a cursor positioned at the start of data.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// NewAt returns a cursor over a sub-region whose error offsets are reported
// relative to the enclosing buffer (base is the region's absolute offset).
func NewAt(data []byte, base int) *Cursor {
	return &Cursor{data: data, base: base}
}

// Pos returns the current offset from the start of the region.
func (c *Cursor) Pos() int { return c.pos }

// AbsPos returns the current file-absolute offset.
func (c *Cursor) AbsPos() int { return c.base + c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }

func (c *Cursor) eof(n int) error {
	return types.Errorf(types.ErrKindEOF, c.base+c.pos,
		"unexpected end of class file: need %d bytes, have %d", n, c.Remaining())
}

func (c *Cursor) take(n int) ([]byte, error) {
	b, ok := Slice(c.data, c.pos, n)
	if !ok {
		return nil, c.eof(n)
	}
	c.pos += n
	return b, nil
}

// Skip advances past n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.take(n)
	return err
}

// ReadBytes returns the next n bytes as a borrowed sub-slice.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	return c.take(n)
}

func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (c *Cursor) ReadU64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (c *Cursor) ReadI8() (int8, error) {
	v, err := c.ReadU8()
	return int8(v), err
}

func (c *Cursor) ReadI16() (int16, error) {
	v, err := c.ReadU16()
	return int16(v), err
}

func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

func (c *Cursor) ReadI64() (int64, error) {
	v, err := c.ReadU64()
	return int64(v), err
}

func (c *Cursor) ReadF32() (float32, error) {
	v, err := c.ReadU32()
	return math.Float32frombits(v), err
}

func (c *Cursor) ReadF64() (float64, error) {
	v, err := c.ReadU64()
	return math.Float64frombits(v), err
}

// U16At reads a big-endian uint16 at an absolute offset without moving the
// cursor.
func U16At(data []byte, off int) (uint16, error) {
	b, ok := Slice(data, off, 2)
	if !ok {
		return 0, types.Errorf(types.ErrKindEOF, off,
			"unexpected end of class file: need 2 bytes at offset %d", off)
	}
	return binary.BigEndian.Uint16(b), nil
}

// U32At reads a big-endian uint32 at an absolute offset without moving the
// cursor.
func U32At(data []byte, off int) (uint32, error) {
	b, ok := Slice(data, off, 4)
	if !ok {
		return 0, types.Errorf(types.ErrKindEOF, off,
			"unexpected end of class file: need 4 bytes at offset %d", off)
	}
	return binary.BigEndian.Uint32(b), nil
}
