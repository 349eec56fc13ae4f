package classfile_test

import (
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Earthcomputer/classfile/pkg/classfile"
	"github.com/Earthcomputer/classfile/pkg/types"
)

// cw accumulates big-endian class file bytes for test fixtures.
type cw struct{ b []byte }

func (w *cw) u8(v uint8) *cw { w.b = append(w.b, v); return w }
func (w *cw) u16(v uint16) *cw {
	w.b = binary.BigEndian.AppendUint16(w.b, v)
	return w
}
func (w *cw) u32(v uint32) *cw {
	w.b = binary.BigEndian.AppendUint32(w.b, v)
	return w
}
func (w *cw) raw(p ...byte) *cw { w.b = append(w.b, p...); return w }
func (w *cw) utf8(s string) *cw {
	w.u8(1).u16(uint16(len(s)))
	w.b = append(w.b, s...)
	return w
}

// fixtureClass builds a class exercising fields, code, nested debug tables
// and an unknown attribute. Pool:
//
//	1 Utf8 "Foo"            2 Class -> 1
//	3 Utf8 "java/lang/Object"  4 Class -> 3
//	5 Utf8 "x"              6 Utf8 "I"
//	7 Utf8 "ConstantValue"  8 Integer 7
//	9 Utf8 "m"             10 Utf8 "()V"
//	11 Utf8 "Code"         12 Utf8 "LineNumberTable"
//	13 Utf8 "SourceFile"   14 Utf8 "Foo.java"
//	15 Utf8 "Custom"
func fixtureClass() []byte {
	w := &cw{}
	w.u32(0xCAFEBABE).u16(0).u16(52)
	w.u16(16)
	w.utf8("Foo")
	w.u8(7).u16(1)
	w.utf8("java/lang/Object")
	w.u8(7).u16(3)
	w.utf8("x")
	w.utf8("I")
	w.utf8("ConstantValue")
	w.u8(3).u32(7)
	w.utf8("m")
	w.utf8("()V")
	w.utf8("Code")
	w.utf8("LineNumberTable")
	w.utf8("SourceFile")
	w.utf8("Foo.java")
	w.utf8("Custom")

	w.u16(0x0021).u16(2).u16(4)
	w.u16(0) // interfaces

	w.u16(1) // fields
	w.u16(0x0019).u16(5).u16(6)
	w.u16(1)
	w.u16(7).u32(2).u16(8)

	w.u16(1) // methods
	w.u16(0x0001).u16(9).u16(10)
	w.u16(1)
	// Code: return, one line number entry
	w.u16(11).u32(25)
	w.u16(0).u16(1)
	w.u32(1).raw(0xB1)
	w.u16(0)
	w.u16(1)
	w.u16(12).u32(6).u16(1).u16(0).u16(30)

	w.u16(2) // class attributes
	w.u16(13).u32(2).u16(14)
	w.u16(15).u32(2).raw(0xDE, 0xAD)
	return w.b
}

func TestRoundTripPreservesBytes(t *testing.T) {
	data := fixtureClass()
	out, err := classfile.Transform(data, classfile.OpenOptions{}, classfile.WriteOptions{}, nil)
	require.NoError(t, err)
	require.Equal(t, data, out)

	// Re-serializing the output must be a fixed point.
	again, err := classfile.Transform(out, classfile.OpenOptions{}, classfile.WriteOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestMinimalClassRoundTrip(t *testing.T) {
	w := &cw{}
	w.u32(0xCAFEBABE).u16(0).u16(53)
	w.u16(3)
	w.utf8("module-info")
	w.u8(7).u16(1)
	w.u16(0x8000).u16(2).u16(0)
	w.u16(0).u16(0).u16(0).u16(0)
	data := w.b

	r, err := classfile.OpenBytes(data, classfile.OpenOptions{})
	require.NoError(t, err)
	name, err := r.ClassName()
	require.NoError(t, err)
	assert.Equal(t, "module-info", name.String())
	super, err := r.SuperName()
	require.NoError(t, err)
	assert.True(t, super.IsZero())

	out, err := classfile.Transform(data, classfile.OpenOptions{}, classfile.WriteOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestSingleInterfaceRoundTrip(t *testing.T) {
	// Degenerate but legal layout: this_class and the sole superinterface
	// share one Class entry, no superclass, no members.
	w := &cw{}
	w.u32(0xCAFEBABE).u16(0).u16(52)
	w.u16(3)
	w.utf8("Object")
	w.u8(7).u16(1)
	w.u16(0x0021).u16(2).u16(0)
	w.u16(1).u16(2)
	w.u16(0).u16(0).u16(0)
	data := w.b

	r, err := classfile.OpenBytes(data, classfile.OpenOptions{})
	require.NoError(t, err)
	name, err := r.ClassName()
	require.NoError(t, err)
	assert.Equal(t, "Object", name.String())
	ifaces, err := r.Interfaces()
	require.NoError(t, err)
	require.Len(t, ifaces, 1)
	assert.Equal(t, "Object", ifaces[0].String())

	out, err := classfile.Transform(data, classfile.OpenOptions{}, classfile.WriteOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

// paramAnnClass builds a class whose single method m(II)V carries both
// parameter annotation variants: two annotable parameters, the first
// annotated @LFoo; visibly, the second @LBar; invisibly. Pool:
//
//	1 Utf8 "P"       2 Class -> 1
//	3 Utf8 "m"       4 Utf8 "(II)V"
//	5 Utf8 "LFoo;"   6 Utf8 "LBar;"
//	7 Utf8 "RuntimeVisibleParameterAnnotations"
//	8 Utf8 "RuntimeInvisibleParameterAnnotations"
func paramAnnClass() []byte {
	w := &cw{}
	w.u32(0xCAFEBABE).u16(0).u16(52)
	w.u16(9)
	w.utf8("P")
	w.u8(7).u16(1)
	w.utf8("m")
	w.utf8("(II)V")
	w.utf8("LFoo;")
	w.utf8("LBar;")
	w.utf8("RuntimeVisibleParameterAnnotations")
	w.utf8("RuntimeInvisibleParameterAnnotations")

	w.u16(0x0021).u16(2).u16(0)
	w.u16(0) // interfaces
	w.u16(0) // fields

	w.u16(1) // methods
	w.u16(0x0001).u16(3).u16(4)
	w.u16(2)
	// visible: param 0 @LFoo;, param 1 empty
	w.u16(7).u32(9)
	w.u8(2).u16(1).u16(5).u16(0).u16(0)
	// invisible: param 0 empty, param 1 @LBar;
	w.u16(8).u32(9)
	w.u8(2).u16(0).u16(1).u16(6).u16(0)

	w.u16(0) // class attributes
	return w.b
}

func TestParameterAnnotationsRoundTrip(t *testing.T) {
	data := paramAnnClass()
	out, err := classfile.Transform(data, classfile.OpenOptions{}, classfile.WriteOptions{}, nil)
	require.NoError(t, err)
	require.Equal(t, data, out)

	// The attribute must still be event-decodable on the output.
	r, err := classfile.OpenBytes(out, classfile.OpenOptions{})
	require.NoError(t, err)
	spy := &paramAnnSpy{}
	require.NoError(t, r.Accept(spy))
	assert.Equal(t, []uint8{2, 2}, spy.counts)
	assert.Equal(t, []string{"v0:LFoo;", "i1:LBar;"}, spy.anns)
}

type paramAnnSpy struct {
	types.ForwardingClassVisitor
	counts []uint8
	anns   []string
}

func (s *paramAnnSpy) VisitMethod(types.Member) (types.MethodVisitor, error) {
	return &paramAnnSpyMethod{s: s}, nil
}

type paramAnnSpyMethod struct {
	types.ForwardingMethodVisitor
	s *paramAnnSpy
}

func (m *paramAnnSpyMethod) VisitAnnotableParameterCount(visible bool, count uint8) error {
	m.s.counts = append(m.s.counts, count)
	return nil
}

func (m *paramAnnSpyMethod) VisitParameterAnnotation(visible bool, param uint8, descriptor types.JavaString) (types.AnnotationVisitor, error) {
	kind := "i"
	if visible {
		kind = "v"
	}
	m.s.anns = append(m.s.anns, fmt.Sprintf("%s%d:%s", kind, param, descriptor))
	return nil, nil
}

type attrSpy struct {
	types.ForwardingClassVisitor
	names []string
}

func (s *attrSpy) VisitAttribute(attr types.Attribute) error {
	s.names = append(s.names, attr.AttributeName().String())
	if s.Next == nil {
		return nil
	}
	return s.Next.VisitAttribute(attr)
}

func TestUnknownAttributePassesThroughRaw(t *testing.T) {
	data := fixtureClass()
	spy := &attrSpy{}
	out, err := classfile.Transform(data, classfile.OpenOptions{}, classfile.WriteOptions{},
		func(next types.ClassVisitor) types.ClassVisitor {
			spy.Next = next
			return spy
		})
	require.NoError(t, err)
	assert.Equal(t, data, out)
	assert.Equal(t, []string{"SourceFile", "Custom"}, spy.names)

	payload, ok, err := must(classfile.OpenBytes(data, classfile.OpenOptions{})).ClassAttribute("Custom")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{0xDE, 0xAD}, payload)
}

func must(r classfile.Reader, err error) classfile.Reader {
	if err != nil {
		panic(err)
	}
	return r
}

func TestInvalidUtf8SurvivesRoundTrip(t *testing.T) {
	w := &cw{}
	w.u32(0xCAFEBABE).u16(0).u16(52)
	w.u16(5)
	w.u8(1).u16(2).raw(0xFF, 0x41) // not decodable as modified UTF-8
	w.u8(7).u16(1)
	w.utf8("java/lang/Object")
	w.u8(7).u16(3)
	w.u16(0x0021).u16(2).u16(4)
	w.u16(0).u16(0).u16(0).u16(0)
	data := w.b

	r, err := classfile.OpenBytes(data, classfile.OpenOptions{})
	require.NoError(t, err)
	name, err := r.ClassName()
	require.NoError(t, err)
	assert.False(t, name.IsValid())
	assert.Equal(t, []byte{0xFF, 0x41}, name.Raw())

	out, err := classfile.Transform(data, classfile.OpenOptions{}, classfile.WriteOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestTruncatedFileReportsOffset(t *testing.T) {
	data := fixtureClass()
	_, err := classfile.OpenBytes(data[:20], classfile.OpenOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnexpectedEOF)
	var cfErr *types.Error
	require.ErrorAs(t, err, &cfErr)
	assert.GreaterOrEqual(t, cfErr.Off, 8)
	assert.LessOrEqual(t, cfErr.Off, 20)
}

func TestBadMagicRejected(t *testing.T) {
	_, err := classfile.OpenBytes([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0, 0, 52}, classfile.OpenOptions{})
	assert.ErrorIs(t, err, types.ErrBadMagic)
}

// reassembler forces every method body through instruction-level decode and
// re-encode instead of the verbatim copy path.
type reassembler struct {
	types.ForwardingClassVisitor
}

func (r *reassembler) VisitMethod(m types.Member) (types.MethodVisitor, error) {
	next, err := r.Next.VisitMethod(m)
	if err != nil || next == nil {
		return next, err
	}
	return &reassembleMethod{types.ForwardingMethodVisitor{Next: next}}, nil
}

type reassembleMethod struct {
	types.ForwardingMethodVisitor
}

func (m *reassembleMethod) VisitCode(code *types.Code) (types.CodeVisitor, error) {
	return m.Next.VisitCode(&types.Code{
		MaxStack:  code.MaxStack,
		MaxLocals: code.MaxLocals,
		Handlers:  code.Handlers,
		Attrs:     code.Attrs,
	})
}

func TestReassembledCodeMatchesSource(t *testing.T) {
	data := fixtureClass()
	out, err := classfile.Transform(data, classfile.OpenOptions{}, classfile.WriteOptions{},
		func(next types.ClassVisitor) types.ClassVisitor {
			return &reassembler{types.ForwardingClassVisitor{Next: next}}
		})
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestSkipCodeDropsMethodBodies(t *testing.T) {
	data := fixtureClass()
	out, err := classfile.Transform(data, classfile.OpenOptions{SkipCode: true}, classfile.WriteOptions{}, nil)
	require.NoError(t, err)
	require.NotEqual(t, data, out)

	r, err := classfile.OpenBytes(out, classfile.OpenOptions{})
	require.NoError(t, err)
	counter := &codeCounter{}
	require.NoError(t, r.Accept(counter))
	assert.Equal(t, 1, counter.methods)
	assert.Equal(t, 0, counter.bodies)
}

type codeCounter struct {
	types.ForwardingClassVisitor
	methods, bodies int
}

func (c *codeCounter) VisitMethod(types.Member) (types.MethodVisitor, error) {
	c.methods++
	return &bodyCounter{c: c}, nil
}

type bodyCounter struct {
	types.ForwardingMethodVisitor
	c *codeCounter
}

func (b *bodyCounter) VisitCode(*types.Code) (types.CodeVisitor, error) {
	b.c.bodies++
	return nil, nil
}

func TestWriterRejectsEventsAfterFinish(t *testing.T) {
	w := classfile.NewWriter(classfile.WriteOptions{})
	require.NoError(t, w.VisitClass(types.ClassInfo{
		MajorVersion: 52,
		Name:         types.StringOf("Foo"),
		SuperName:    types.StringOf("java/lang/Object"),
	}))
	require.NoError(t, w.VisitEnd())
	_, err := w.Finish()
	require.NoError(t, err)
	_, err = w.Finish()
	assert.True(t, errors.Is(err, types.ErrFinished))
}
