package writer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Earthcomputer/classfile/internal/pool"
	"github.com/Earthcomputer/classfile/pkg/types"
)

func js(s string) types.JavaString { return types.StringOf(s) }

func TestInternDeduplicates(t *testing.T) {
	b := NewBuilder()
	i1, err := b.Utf8(js("hello"))
	if err != nil {
		t.Fatalf("Utf8: %v", err)
	}
	i2, err := b.Utf8(js("hello"))
	if err != nil {
		t.Fatalf("Utf8: %v", err)
	}
	if i1 != i2 {
		t.Fatalf("same value interned twice: %d vs %d", i1, i2)
	}
	i3, err := b.Utf8(js("world"))
	if err != nil {
		t.Fatalf("Utf8: %v", err)
	}
	if i3 == i1 {
		t.Fatalf("distinct values share index %d", i1)
	}
}

func TestWideEntriesTakeTwoSlots(t *testing.T) {
	b := NewBuilder()
	l, err := b.Long(42)
	if err != nil {
		t.Fatalf("Long: %v", err)
	}
	next, err := b.Integer(1)
	if err != nil {
		t.Fatalf("Integer: %v", err)
	}
	if next != l+2 {
		t.Fatalf("index after long = %d, want %d", next, l+2)
	}
	if b.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", b.Count())
	}
}

func TestMemberRefInternsDependencies(t *testing.T) {
	b := NewBuilder()
	ref := types.MemberRef{Owner: js("Foo"), Name: js("bar"), Descriptor: js("()V")}
	idx, err := b.MethodRef(ref)
	if err != nil {
		t.Fatalf("MethodRef: %v", err)
	}
	// Utf8 x3, Class, NameAndType, Methodref
	if b.Count() != 7 {
		t.Fatalf("Count() = %d, want 7", b.Count())
	}
	again, err := b.MethodRef(ref)
	if err != nil || again != idx {
		t.Fatalf("re-intern = %d, %v", again, err)
	}
	if _, err := b.Class(js("Foo")); err != nil {
		t.Fatalf("Class: %v", err)
	}
	if b.Count() != 7 {
		t.Fatalf("Class(Foo) added an entry, Count() = %d", b.Count())
	}
}

func TestFloatKeyedByBits(t *testing.T) {
	b := NewBuilder()
	pz, _ := b.Float(0)
	nz, err := b.Float(math.Float32frombits(0x80000000))
	if err != nil {
		t.Fatalf("Float: %v", err)
	}
	if pz == nz {
		t.Fatalf("positive and negative zero collapsed to index %d", pz)
	}
}

func TestFrozenBuilderRejectsInterns(t *testing.T) {
	b := NewBuilder()
	if _, err := b.Integer(1); err != nil {
		t.Fatalf("Integer: %v", err)
	}
	b.freeze()
	if _, err := b.Integer(2); err == nil {
		t.Fatalf("intern after freeze succeeded")
	}
	// existing entries still resolve
	if idx, err := b.Integer(1); err != nil || idx != 1 {
		t.Fatalf("lookup after freeze = %d, %v", idx, err)
	}
}

// sourcePool builds a small class file prefix and scans its pool.
func sourcePool(t *testing.T) (*pool.Pool, []byte) {
	t.Helper()
	var buf []byte
	buf = binary.BigEndian.AppendUint32(buf, 0xCAFEBABE)
	buf = binary.BigEndian.AppendUint32(buf, 52)
	buf = binary.BigEndian.AppendUint16(buf, 6)
	buf = append(buf, 1, 0, 3)
	buf = append(buf, "Foo"...)
	buf = append(buf, 7, 0, 1)
	buf = append(buf, 5, 0, 0, 0, 0, 0, 0, 0, 9)
	buf = append(buf, 8, 0, 1)
	p, rest, err := pool.Scan(buf)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return p, buf[8:rest]
}

func TestPreloadPreservesBytes(t *testing.T) {
	src, poolBytes := sourcePool(t)
	b := NewBuilder()
	if err := b.Preload(src); err != nil {
		t.Fatalf("Preload: %v", err)
	}
	if !b.Preloaded() {
		t.Fatalf("Preloaded() = false")
	}
	out := b.appendPool(nil)
	if !bytes.Equal(out, poolBytes) {
		t.Fatalf("pool bytes differ:\n got %x\nwant %x", out, poolBytes)
	}
}

func TestPreloadRegistersForDedup(t *testing.T) {
	src, _ := sourcePool(t)
	b := NewBuilder()
	if err := b.Preload(src); err != nil {
		t.Fatalf("Preload: %v", err)
	}
	idx, err := b.Class(js("Foo"))
	if err != nil {
		t.Fatalf("Class: %v", err)
	}
	if idx != 2 {
		t.Fatalf("Class(Foo) = %d, want the preloaded index 2", idx)
	}
	if l, err := b.Long(9); err != nil || l != 3 {
		t.Fatalf("Long(9) = %d, %v, want the preloaded index 3", l, err)
	}
	if count := b.Count(); count != 6 {
		t.Fatalf("Count() = %d, want 6", count)
	}
}

func TestPoolOverflow(t *testing.T) {
	b := NewBuilder()
	var err error
	for i := 0; err == nil && i < 0x10000; i++ {
		_, err = b.Integer(int32(i))
	}
	if !errors.Is(err, types.ErrPoolOverflow) {
		t.Fatalf("err = %v, want pool overflow", err)
	}
	if b.Count() != 0xFFFF {
		t.Fatalf("Count() = %d after overflow, want %d", b.Count(), 0xFFFF)
	}
}

func TestAbsentStringRejected(t *testing.T) {
	b := NewBuilder()
	_, err := b.Utf8(types.JavaString{})
	if !errors.Is(err, types.ErrUnresolvedReference) {
		t.Fatalf("err = %v", err)
	}
}
