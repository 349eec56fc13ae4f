package pool

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Earthcomputer/classfile/pkg/types"
)

// poolBytes builds a class file prefix (magic, versions, pool count) followed
// by the given raw pool entries.
func poolBytes(count uint16, entries ...[]byte) []byte {
	b := []byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x00, 0x00, 0x34}
	b = binary.BigEndian.AppendUint16(b, count)
	for _, e := range entries {
		b = append(b, e...)
	}
	return b
}

func utf8Entry(s string) []byte {
	e := []byte{byte(types.TagUtf8)}
	e = binary.BigEndian.AppendUint16(e, uint16(len(s)))
	return append(e, s...)
}

func refEntry(tag types.ConstantTag, refs ...uint16) []byte {
	e := []byte{byte(tag)}
	for _, r := range refs {
		e = binary.BigEndian.AppendUint16(e, r)
	}
	return e
}

// testPool lays out:
//
//	1: Utf8 "java/lang/Object"
//	2: Class -> 1
//	3: Utf8 "value"
//	4: Utf8 "I"
//	5: NameAndType 3, 4
//	6: Fieldref 2, 5
//	7: Long 0x0102030405060708 (slot 8 is the shadow)
//	9: Integer -42
//	10: String -> 1
//	11: MethodHandle getfield -> 6
//	12: InvokeDynamic bootstrap 2, nat 5
func testPool(t *testing.T) *Pool {
	t.Helper()
	data := poolBytes(13,
		utf8Entry("java/lang/Object"),
		refEntry(types.TagClass, 1),
		utf8Entry("value"),
		utf8Entry("I"),
		refEntry(types.TagNameAndType, 3, 4),
		refEntry(types.TagFieldRef, 2, 5),
		[]byte{byte(types.TagLong), 1, 2, 3, 4, 5, 6, 7, 8},
		[]byte{byte(types.TagInteger), 0xFF, 0xFF, 0xFF, 0xD6},
		refEntry(types.TagString, 1),
		[]byte{byte(types.TagMethodHandle), 1, 0, 6},
		refEntry(types.TagInvokeDynamic, 2, 5),
	)
	p, rest, err := Scan(data)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if rest != len(data) {
		t.Fatalf("Scan consumed %d bytes, want %d", rest, len(data))
	}
	return p
}

func TestScanAndLookup(t *testing.T) {
	p := testPool(t)

	if p.Count() != 13 {
		t.Fatalf("Count() = %d, want 13", p.Count())
	}
	name, err := p.Utf8(1)
	if err != nil {
		t.Fatalf("Utf8(1): %v", err)
	}
	if got, _ := name.Decode(); got != "java/lang/Object" {
		t.Fatalf("Utf8(1) = %q", got)
	}
	cls, err := p.ClassName(2)
	if err != nil {
		t.Fatalf("ClassName(2): %v", err)
	}
	if !cls.Equal(name) {
		t.Fatalf("ClassName(2) = %v", cls)
	}
	v, err := p.Long(7)
	if err != nil {
		t.Fatalf("Long(7): %v", err)
	}
	if v != 0x0102030405060708 {
		t.Fatalf("Long(7) = %#x", v)
	}
	n, err := p.Integer(9)
	if err != nil {
		t.Fatalf("Integer(9): %v", err)
	}
	if n != -42 {
		t.Fatalf("Integer(9) = %d", n)
	}
	s, err := p.String(10)
	if err != nil {
		t.Fatalf("String(10): %v", err)
	}
	if !s.Equal(name) {
		t.Fatalf("String(10) = %v", s)
	}
}

func TestResolvedReferences(t *testing.T) {
	p := testPool(t)

	ref, err := p.FieldRef(6)
	if err != nil {
		t.Fatalf("FieldRef(6): %v", err)
	}
	if got, _ := ref.Owner.Decode(); got != "java/lang/Object" {
		t.Fatalf("owner = %q", got)
	}
	if got, _ := ref.Name.Decode(); got != "value" {
		t.Fatalf("name = %q", got)
	}
	if got, _ := ref.Descriptor.Decode(); got != "I" {
		t.Fatalf("descriptor = %q", got)
	}

	h, err := p.MethodHandle(11)
	if err != nil {
		t.Fatalf("MethodHandle(11): %v", err)
	}
	if h.Kind != types.HandleGetField {
		t.Fatalf("handle kind = %v", h.Kind)
	}
	if got, _ := h.Name.Decode(); got != "value" {
		t.Fatalf("handle name = %q", got)
	}

	d, err := p.InvokeDynamic(12)
	if err != nil {
		t.Fatalf("InvokeDynamic(12): %v", err)
	}
	if d.BootstrapIndex != 2 {
		t.Fatalf("bootstrap index = %d", d.BootstrapIndex)
	}
	if got, _ := d.Descriptor.Decode(); got != "I" {
		t.Fatalf("indy descriptor = %q", got)
	}
}

func TestIndexValidation(t *testing.T) {
	p := testPool(t)

	if _, err := p.Utf8(0); !errors.Is(err, types.ErrInvalidIndex) {
		t.Fatalf("Utf8(0) err = %v", err)
	}
	if _, err := p.Utf8(13); !errors.Is(err, types.ErrInvalidIndex) {
		t.Fatalf("Utf8(13) err = %v", err)
	}
	// Slot 8 is the shadow half of the long at 7.
	if _, err := p.Tag(8); !errors.Is(err, types.ErrInvalidIndex) {
		t.Fatalf("Tag(8) err = %v", err)
	}
	if _, err := p.Utf8(2); !errors.Is(err, types.ErrWrongConstantKind) {
		t.Fatalf("Utf8(2) err = %v", err)
	}
	if _, err := p.Long(9); !errors.Is(err, types.ErrWrongConstantKind) {
		t.Fatalf("Long(9) err = %v", err)
	}
}

func TestConstLookup(t *testing.T) {
	p := testPool(t)

	c, err := p.Const(9)
	if err != nil {
		t.Fatalf("Const(9): %v", err)
	}
	if c != types.IntConst(-42) {
		t.Fatalf("Const(9) = %v", c)
	}
	c, err = p.Const(7)
	if err != nil {
		t.Fatalf("Const(7): %v", err)
	}
	if c != types.LongConst(0x0102030405060708) {
		t.Fatalf("Const(7) = %v", c)
	}
	if _, err := p.Const(1); !errors.Is(err, types.ErrWrongConstantKind) {
		t.Fatalf("Const(1) err = %v", err)
	}
}

func TestEntryUnresolved(t *testing.T) {
	p := testPool(t)

	e, err := p.Entry(6)
	if err != nil {
		t.Fatalf("Entry(6): %v", err)
	}
	if e.Tag != types.TagFieldRef || e.Ref1 != 2 || e.Ref2 != 5 {
		t.Fatalf("Entry(6) = %+v", e)
	}
	e, err = p.Entry(11)
	if err != nil {
		t.Fatalf("Entry(11): %v", err)
	}
	if e.Kind != types.HandleGetField || e.Ref1 != 6 {
		t.Fatalf("Entry(11) = %+v", e)
	}
}

func TestScanErrors(t *testing.T) {
	// Unknown tag byte.
	_, _, err := Scan(poolBytes(2, []byte{42, 0, 0}))
	if !errors.Is(err, types.ErrMalformedConstant) {
		t.Fatalf("unknown tag err = %v", err)
	}
	// Truncated Utf8 payload.
	_, _, err = Scan(poolBytes(2, []byte{byte(types.TagUtf8), 0, 10, 'a'}))
	if !errors.Is(err, types.ErrUnexpectedEOF) {
		t.Fatalf("truncated utf8 err = %v", err)
	}
	// Long in the final slot has nowhere to put its second half.
	_, _, err = Scan(poolBytes(2, []byte{byte(types.TagLong), 0, 0, 0, 0, 0, 0, 0, 1}))
	if !errors.Is(err, types.ErrMalformedConstant) {
		t.Fatalf("wide overflow err = %v", err)
	}
}
