package buf

import (
	"errors"
	"math"
	"testing"

	"github.com/Earthcomputer/classfile/pkg/types"
)

func TestCursorReads(t *testing.T) {
	data := []byte{
		0xCA, 0xFE, 0xBA, 0xBE, // u32
		0x00, 0x41, // u16
		0x7F,                   // u8
		0xFF, 0xFF, 0xFF, 0xFE, // i32 = -2
	}
	c := New(data)

	u32, err := c.ReadU32()
	if err != nil || u32 != 0xCAFEBABE {
		t.Fatalf("ReadU32 = %x, %v", u32, err)
	}
	u16, err := c.ReadU16()
	if err != nil || u16 != 0x41 {
		t.Fatalf("ReadU16 = %x, %v", u16, err)
	}
	u8, err := c.ReadU8()
	if err != nil || u8 != 0x7F {
		t.Fatalf("ReadU8 = %x, %v", u8, err)
	}
	i32, err := c.ReadI32()
	if err != nil || i32 != -2 {
		t.Fatalf("ReadI32 = %d, %v", i32, err)
	}
	if c.Remaining() != 0 {
		t.Fatalf("Remaining = %d", c.Remaining())
	}
}

func TestCursorEOFPreservesOffset(t *testing.T) {
	c := New([]byte{0x00})
	_, err := c.ReadU32()
	if !errors.Is(err, types.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
	var te *types.Error
	if !errors.As(err, &te) || te.Off != 0 {
		t.Fatalf("expected offset 0, got %+v", te)
	}
}

func TestCursorBaseOffset(t *testing.T) {
	c := NewAt([]byte{0x01}, 100)
	if _, err := c.ReadU8(); err != nil {
		t.Fatalf("ReadU8: %v", err)
	}
	_, err := c.ReadU8()
	var te *types.Error
	if !errors.As(err, &te) || te.Off != 101 {
		t.Fatalf("expected absolute offset 101, got %+v", te)
	}
	if c.AbsPos() != 101 {
		t.Fatalf("AbsPos = %d", c.AbsPos())
	}
}

func TestCursorReadBytesBorrows(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	c := New(data)
	b, err := c.ReadBytes(2)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	data[0] = 9
	if b[0] != 9 {
		t.Fatalf("expected a borrowed sub-slice, got a copy")
	}
}

func TestSliceBounds(t *testing.T) {
	b := []byte{1, 2, 3}
	if _, ok := Slice(b, 1, 2); !ok {
		t.Fatalf("expected in-bounds slice")
	}
	if _, ok := Slice(b, 2, 2); ok {
		t.Fatalf("expected out-of-bounds")
	}
	if _, ok := Slice(b, -1, 1); ok {
		t.Fatalf("expected rejection of negative offset")
	}
	if _, ok := Slice(b, 1, math.MaxInt); ok {
		t.Fatalf("expected overflow rejection")
	}
}
