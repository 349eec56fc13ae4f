package reader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/Earthcomputer/classfile/pkg/types"
)

// cw builds class file bytes for tests.
type cw struct{ b []byte }

func (c *cw) u8(v uint8) *cw   { c.b = append(c.b, v); return c }
func (c *cw) u16(v uint16) *cw { c.b = binary.BigEndian.AppendUint16(c.b, v); return c }
func (c *cw) u32(v uint32) *cw { c.b = binary.BigEndian.AppendUint32(c.b, v); return c }
func (c *cw) raw(v ...byte) *cw {
	c.b = append(c.b, v...)
	return c
}
func (c *cw) utf8(s string) *cw {
	c.u8(1).u16(uint16(len(s)))
	c.b = append(c.b, s...)
	return c
}

// testClass lays out a class named Foo extending java/lang/Object with one
// constant field, one empty method, a SourceFile attribute, and an
// unrecognized "Custom" attribute.
//
//	pool: 1 Utf8 "Foo", 2 Class->1, 3 Utf8 "java/lang/Object", 4 Class->3,
//	      5 "x", 6 "I", 7 "ConstantValue", 8 Integer 7, 9 "m", 10 "()V",
//	      11 "Code", 12 "SourceFile", 13 "Foo.java", 14 "Custom"
func testClass() []byte {
	c := &cw{}
	c.u32(0xCAFEBABE).u16(0).u16(52)
	c.u16(15)
	c.utf8("Foo")
	c.u8(7).u16(1)
	c.utf8("java/lang/Object")
	c.u8(7).u16(3)
	c.utf8("x")
	c.utf8("I")
	c.utf8("ConstantValue")
	c.u8(3).u32(7)
	c.utf8("m")
	c.utf8("()V")
	c.utf8("Code")
	c.utf8("SourceFile")
	c.utf8("Foo.java")
	c.utf8("Custom")

	c.u16(0x0021).u16(2).u16(4).u16(0)

	// one field: public static int x with ConstantValue 7
	c.u16(1)
	c.u16(0x0009).u16(5).u16(6).u16(1)
	c.u16(7).u32(2).u16(8)

	// one method: public void m() { return; }
	c.u16(1)
	c.u16(0x0001).u16(9).u16(10).u16(1)
	c.u16(11).u32(13)
	c.u16(0).u16(1).u32(1).raw(0xB1).u16(0).u16(0)

	// class attributes: SourceFile, then Custom with an opaque payload
	c.u16(2)
	c.u16(12).u32(2).u16(13)
	c.u16(14).u32(2).raw(0xDE, 0xAD)
	return c.b
}

func mustOpen(t *testing.T, opts types.OpenOptions) *Reader {
	t.Helper()
	r, err := OpenBytes(testClass(), opts)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	return r
}

func TestDirectAccess(t *testing.T) {
	r := mustOpen(t, types.OpenOptions{})
	if r.MajorVersion() != 52 || r.MinorVersion() != 0 {
		t.Fatalf("version = %d.%d", r.MajorVersion(), r.MinorVersion())
	}
	if !r.Access().Has(types.AccPublic) {
		t.Fatalf("access = %v", r.Access())
	}
	name, err := r.ClassName()
	if err != nil {
		t.Fatalf("ClassName: %v", err)
	}
	if got, _ := name.Decode(); got != "Foo" {
		t.Fatalf("ClassName = %q", got)
	}
	super, err := r.SuperName()
	if err != nil {
		t.Fatalf("SuperName: %v", err)
	}
	if got, _ := super.Decode(); got != "java/lang/Object" {
		t.Fatalf("SuperName = %q", got)
	}
	ifaces, err := r.Interfaces()
	if err != nil || len(ifaces) != 0 {
		t.Fatalf("Interfaces = %v, %v", ifaces, err)
	}
}

func TestClassAttributeLookup(t *testing.T) {
	r := mustOpen(t, types.OpenOptions{})
	data, ok, err := r.ClassAttribute("Custom")
	if err != nil || !ok {
		t.Fatalf("ClassAttribute(Custom) = %v, %v", ok, err)
	}
	if len(data) != 2 || data[0] != 0xDE || data[1] != 0xAD {
		t.Fatalf("payload = %x", data)
	}
	_, ok, err = r.ClassAttribute("NoSuchAttr")
	if err != nil || ok {
		t.Fatalf("ClassAttribute(NoSuchAttr) = %v, %v", ok, err)
	}
}

// recorder captures the event stream for assertions.
type recorder struct {
	types.ForwardingClassVisitor
	events []string
	fields []types.Member
	attrs  []types.Attribute

	fieldAttrs []types.Attribute
	code       *types.Code
	insns      []types.Instruction
	streamCode bool
}

func (r *recorder) VisitClass(info types.ClassInfo) error {
	r.events = append(r.events, "class")
	return nil
}

func (r *recorder) VisitField(m types.Member) (types.FieldVisitor, error) {
	r.events = append(r.events, "field")
	r.fields = append(r.fields, m)
	return &recorderField{r: r}, nil
}

func (r *recorder) VisitMethod(m types.Member) (types.MethodVisitor, error) {
	r.events = append(r.events, "method")
	return &recorderMethod{r: r}, nil
}

func (r *recorder) VisitAttribute(attr types.Attribute) error {
	r.events = append(r.events, "attr:"+attr.AttributeName().Key())
	r.attrs = append(r.attrs, attr)
	return nil
}

func (r *recorder) VisitEnd() error {
	r.events = append(r.events, "end")
	return nil
}

type recorderField struct {
	types.ForwardingFieldVisitor
	r *recorder
}

func (f *recorderField) VisitAttribute(attr types.Attribute) error {
	f.r.fieldAttrs = append(f.r.fieldAttrs, attr)
	return nil
}

type recorderMethod struct {
	types.ForwardingMethodVisitor
	r *recorder
}

func (m *recorderMethod) VisitCode(code *types.Code) (types.CodeVisitor, error) {
	m.r.events = append(m.r.events, "code")
	m.r.code = code
	if !m.r.streamCode {
		return nil, nil
	}
	return &recorderCode{r: m.r}, nil
}

type recorderCode struct{ r *recorder }

func (c *recorderCode) VisitInsn(ins types.Instruction) error {
	c.r.insns = append(c.r.insns, ins)
	return nil
}

func (c *recorderCode) VisitEnd() error { return nil }

func TestAcceptEventOrder(t *testing.T) {
	r := mustOpen(t, types.OpenOptions{})
	rec := &recorder{streamCode: true}
	if err := r.Accept(rec); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	want := []string{"class", "field", "method", "code", "attr:SourceFile", "attr:Custom", "end"}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v", rec.events)
	}
	for i, e := range want {
		if rec.events[i] != e {
			t.Fatalf("event %d = %q, want %q (all: %v)", i, rec.events[i], e, rec.events)
		}
	}

	if len(rec.fieldAttrs) != 1 {
		t.Fatalf("field attrs = %v", rec.fieldAttrs)
	}
	cv, ok := rec.fieldAttrs[0].(*types.ConstantValueAttr)
	if !ok || cv.Value != types.IntConst(7) {
		t.Fatalf("constant value = %#v", rec.fieldAttrs[0])
	}

	if rec.code.MaxLocals != 1 || len(rec.code.Bytecode) != 1 {
		t.Fatalf("code = %+v", rec.code)
	}
	if len(rec.insns) != 1 || rec.insns[0].Op != types.OpReturn {
		t.Fatalf("instructions = %+v", rec.insns)
	}

	if _, ok := rec.attrs[0].(*types.SourceFileAttr); !ok {
		t.Fatalf("SourceFile decoded as %T", rec.attrs[0])
	}
	raw, ok := rec.attrs[1].(*types.RawAttribute)
	if !ok || len(raw.Data) != 2 {
		t.Fatalf("Custom decoded as %#v", rec.attrs[1])
	}
}

func TestSkipCode(t *testing.T) {
	r := mustOpen(t, types.OpenOptions{SkipCode: true})
	rec := &recorder{streamCode: true}
	if err := r.Accept(rec); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if rec.code != nil {
		t.Fatalf("code event delivered despite SkipCode")
	}
}

func TestSkipDebug(t *testing.T) {
	r := mustOpen(t, types.OpenOptions{SkipDebug: true})
	rec := &recorder{}
	if err := r.Accept(rec); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	for _, e := range rec.events {
		if e == "attr:SourceFile" {
			t.Fatalf("SourceFile delivered despite SkipDebug: %v", rec.events)
		}
	}
}

// nilFieldVisitor drops every field scope.
type nilFieldVisitor struct{ recorder }

func (v *nilFieldVisitor) VisitField(m types.Member) (types.FieldVisitor, error) {
	v.events = append(v.events, "field")
	return nil, nil
}

func TestNilFieldVisitorSkipsScope(t *testing.T) {
	r := mustOpen(t, types.OpenOptions{})
	rec := &nilFieldVisitor{}
	if err := r.Accept(rec); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if len(rec.fieldAttrs) != 0 {
		t.Fatalf("field attrs delivered for a skipped scope: %v", rec.fieldAttrs)
	}
	// the rest of the file still parses
	if rec.events[len(rec.events)-1] != "end" {
		t.Fatalf("events = %v", rec.events)
	}
}

func TestBadMagic(t *testing.T) {
	data := testClass()
	data[0] = 0xCB
	_, err := OpenBytes(data, types.OpenOptions{})
	if !errors.Is(err, types.ErrBadMagic) {
		t.Fatalf("err = %v", err)
	}
}

func TestVersionGate(t *testing.T) {
	data := testClass()
	binary.BigEndian.PutUint16(data[6:], 99)
	if _, err := OpenBytes(data, types.OpenOptions{}); !errors.Is(err, types.ErrUnsupportedVersion) {
		t.Fatalf("err = %v", err)
	}
	if _, err := OpenBytes(data, types.OpenOptions{AllowUnknownVersions: true}); err != nil {
		t.Fatalf("AllowUnknownVersions: %v", err)
	}
}

func TestTruncatedPool(t *testing.T) {
	data := testClass()
	// cut inside the constant pool section
	cut := data[:30]
	_, err := OpenBytes(cut, types.OpenOptions{})
	if !errors.Is(err, types.ErrUnexpectedEOF) {
		t.Fatalf("err = %v", err)
	}
	var pos *types.Error
	if !errors.As(err, &pos) {
		t.Fatalf("err lacks position: %v", err)
	}
	if pos.Off < 0 || pos.Off > len(cut) {
		t.Fatalf("offset = %d", pos.Off)
	}
}

// annClass builds a class with one visible class annotation
// @LFoo;(count=7, names={"a","b"}).
//
//	pool: 1 Utf8 "Ann", 2 Class->1, 3 "LFoo;", 4 "count", 5 Integer 7,
//	      6 "names", 7 "a", 8 "b", 9 "RuntimeVisibleAnnotations"
func annClass() []byte {
	c := &cw{}
	c.u32(0xCAFEBABE).u16(0).u16(52)
	c.u16(10)
	c.utf8("Ann")
	c.u8(7).u16(1)
	c.utf8("LFoo;")
	c.utf8("count")
	c.u8(3).u32(7)
	c.utf8("names")
	c.utf8("a")
	c.utf8("b")
	c.utf8("RuntimeVisibleAnnotations")
	c.u16(0x0021).u16(2).u16(0).u16(0)
	c.u16(0).u16(0)
	c.u16(1)
	// one annotation, two element values
	payload := &cw{}
	payload.u16(1)
	payload.u16(3).u16(2)
	payload.u16(4).u8('I').u16(5)
	payload.u16(6).u8('[').u16(2).u8('s').u16(7).u8('s').u16(8)
	c.u16(9).u32(uint32(len(payload.b)))
	c.b = append(c.b, payload.b...)
	return c.b
}

// annRecorder captures streamed annotation events.
type annRecorder struct {
	recorder
	log []string
}

func (a *annRecorder) VisitAnnotation(visible bool, descriptor types.JavaString) (types.AnnotationVisitor, error) {
	a.log = append(a.log, "ann:"+descriptor.Key())
	return &annValues{a: a}, nil
}

type annValues struct{ a *annRecorder }

func (v *annValues) VisitValue(name types.JavaString, tag byte, value types.Const) error {
	v.a.log = append(v.a.log, "value:"+name.Key()+":"+string(tag))
	return nil
}

func (v *annValues) VisitEnum(name, typeName, constName types.JavaString) error {
	v.a.log = append(v.a.log, "enum:"+name.Key())
	return nil
}

func (v *annValues) VisitClass(name, descriptor types.JavaString) error {
	v.a.log = append(v.a.log, "class:"+name.Key())
	return nil
}

func (v *annValues) VisitNested(name, descriptor types.JavaString) (types.AnnotationVisitor, error) {
	v.a.log = append(v.a.log, "nested:"+name.Key())
	return v, nil
}

func (v *annValues) VisitArray(name types.JavaString) (types.AnnotationVisitor, error) {
	v.a.log = append(v.a.log, "array:"+name.Key())
	return v, nil
}

func (v *annValues) VisitEnd() error {
	v.a.log = append(v.a.log, "annend")
	return nil
}

// paramAnnClass builds a class whose single method m(I)V carries a
// RuntimeVisibleParameterAnnotations attribute with two annotable
// parameters, only the first of which is annotated.
//
//	pool: 1 Utf8 "P", 2 Class->1, 3 "m", 4 "(I)V", 5 "LFoo;", 6 "n",
//	      7 Integer 3, 8 "RuntimeVisibleParameterAnnotations"
func paramAnnClass() []byte {
	c := &cw{}
	c.u32(0xCAFEBABE).u16(0).u16(52)
	c.u16(9)
	c.utf8("P")
	c.u8(7).u16(1)
	c.utf8("m")
	c.utf8("(I)V")
	c.utf8("LFoo;")
	c.utf8("n")
	c.u8(3).u32(3)
	c.utf8("RuntimeVisibleParameterAnnotations")
	c.u16(0x0021).u16(2).u16(0).u16(0)
	c.u16(0)
	c.u16(1)
	c.u16(0x0001).u16(3).u16(4).u16(1)
	payload := &cw{}
	payload.u8(2)
	payload.u16(1)
	payload.u16(5).u16(1).u16(6).u8('I').u16(7) // @LFoo;(n=3)
	payload.u16(0)
	c.u16(8).u32(uint32(len(payload.b)))
	c.b = append(c.b, payload.b...)
	c.u16(0)
	return c.b
}

type paramAnnRecorder struct {
	recorder
	counts []uint8
	log    []string
}

func (p *paramAnnRecorder) VisitMethod(types.Member) (types.MethodVisitor, error) {
	return &paramAnnMethod{p: p}, nil
}

type paramAnnMethod struct {
	types.ForwardingMethodVisitor
	p *paramAnnRecorder
}

func (m *paramAnnMethod) VisitAnnotableParameterCount(visible bool, count uint8) error {
	m.p.counts = append(m.p.counts, count)
	return nil
}

func (m *paramAnnMethod) VisitParameterAnnotation(visible bool, param uint8, descriptor types.JavaString) (types.AnnotationVisitor, error) {
	m.p.log = append(m.p.log, fmt.Sprintf("param%d:%s", param, descriptor.Key()))
	return &paramAnnValues{p: m.p}, nil
}

type paramAnnValues struct{ p *paramAnnRecorder }

func (v *paramAnnValues) VisitValue(name types.JavaString, tag byte, value types.Const) error {
	v.p.log = append(v.p.log, "value:"+name.Key()+":"+string(tag))
	return nil
}

func (v *paramAnnValues) VisitEnum(name, typeName, constName types.JavaString) error { return nil }
func (v *paramAnnValues) VisitClass(name, descriptor types.JavaString) error        { return nil }
func (v *paramAnnValues) VisitNested(name, descriptor types.JavaString) (types.AnnotationVisitor, error) {
	return nil, nil
}
func (v *paramAnnValues) VisitArray(name types.JavaString) (types.AnnotationVisitor, error) {
	return nil, nil
}
func (v *paramAnnValues) VisitEnd() error {
	v.p.log = append(v.p.log, "annend")
	return nil
}

func TestParameterAnnotationStreaming(t *testing.T) {
	r, err := OpenBytes(paramAnnClass(), types.OpenOptions{})
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	rec := &paramAnnRecorder{}
	if err := r.Accept(rec); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if len(rec.counts) != 1 || rec.counts[0] != 2 {
		t.Fatalf("counts = %v", rec.counts)
	}
	want := []string{"param0:LFoo;", "value:n:I", "annend"}
	if len(rec.log) != len(want) {
		t.Fatalf("log = %v", rec.log)
	}
	for i, e := range want {
		if rec.log[i] != e {
			t.Fatalf("log[%d] = %q, want %q (all: %v)", i, rec.log[i], e, rec.log)
		}
	}
}

func TestAnnotationStreaming(t *testing.T) {
	r, err := OpenBytes(annClass(), types.OpenOptions{})
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	rec := &annRecorder{}
	if err := r.Accept(rec); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	want := []string{
		"ann:LFoo;",
		"value:count:I",
		"array:names",
		"value::s",
		"value::s",
		"annend",
		"annend",
	}
	if len(rec.log) != len(want) {
		t.Fatalf("log = %v", rec.log)
	}
	for i, e := range want {
		if rec.log[i] != e {
			t.Fatalf("log[%d] = %q, want %q (all: %v)", i, rec.log[i], e, rec.log)
		}
	}
}
