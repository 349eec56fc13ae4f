package writer

import (
	"encoding/binary"

	"github.com/Earthcomputer/classfile/internal/format"
	"github.com/Earthcomputer/classfile/pkg/types"
)

// Writer consumes class events and serializes them. Drive it like any other
// ClassVisitor, then call Finish for the bytes; the constant pool is emitted
// last internally but lands in its place in the output.
//
// When the class-start event carries a source pool, the builder preloads it
// so every source index stays valid; opaque payloads then round-trip
// byte-for-byte. Without a source pool, raw attributes and verbatim bytecode
// are rejected since their embedded indices would dangle.
type Writer struct {
	opts types.WriteOptions
	b    *Builder

	minor    uint16
	major    uint16
	access   types.AccessFlags
	thisIdx  uint16
	superIdx uint16
	ifaceIdx []uint16

	fieldCount  int
	fields      []byte
	methodCount int
	methods     []byte
	attrCount   int
	attrs       []byte

	visAnns   []types.Annotation
	invisAnns []types.Annotation

	started  bool
	ended    bool
	finished bool
}

func NewWriter(opts types.WriteOptions) *Writer {
	return &Writer{opts: opts, b: NewBuilder()}
}

// Pool exposes the write-side pool so callers can intern values for custom
// attribute payloads.
func (w *Writer) Pool() types.PoolBuilder { return w.b }

func (w *Writer) VisitClass(info types.ClassInfo) error {
	if w.started {
		return types.Errorf(types.ErrKindState, -1, "class already started")
	}
	w.started = true
	if info.Pool != nil {
		if err := w.b.Preload(info.Pool); err != nil {
			return err
		}
	}
	w.minor = info.MinorVersion
	w.major = info.MajorVersion
	w.access = info.Access

	var err error
	if w.thisIdx, err = w.b.Class(info.Name); err != nil {
		return err
	}
	if !info.SuperName.IsZero() {
		if w.superIdx, err = w.b.Class(info.SuperName); err != nil {
			return err
		}
	}
	w.ifaceIdx = make([]uint16, len(info.Interfaces))
	for i, name := range info.Interfaces {
		if w.ifaceIdx[i], err = w.b.Class(name); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) VisitField(m types.Member) (types.FieldVisitor, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}
	return w.newMember(m), nil
}

func (w *Writer) VisitMethod(m types.Member) (types.MethodVisitor, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}
	mw := w.newMember(m)
	mw.method = true
	return mw, nil
}

func (w *Writer) VisitAnnotation(visible bool, descriptor types.JavaString) (types.AnnotationVisitor, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}
	return collectAnnotation(descriptor, func(ann types.Annotation) error {
		if visible {
			w.visAnns = append(w.visAnns, ann)
		} else {
			w.invisAnns = append(w.invisAnns, ann)
		}
		return nil
	}), nil
}

func (w *Writer) VisitAttribute(attr types.Attribute) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	rec, err := w.encodeAttr(attr)
	if err != nil {
		return err
	}
	w.attrs = append(w.attrs, rec...)
	w.attrCount++
	return nil
}

func (w *Writer) VisitEnd() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	var err error
	if w.attrs, w.attrCount, err = w.flushAnnotations(w.attrs, w.attrCount, w.visAnns, w.invisAnns); err != nil {
		return err
	}
	w.ended = true
	return nil
}

// Finish freezes the pool and assembles the class file. The class-end event
// must have been observed first.
func (w *Writer) Finish() ([]byte, error) {
	if w.finished {
		return nil, types.Errorf(types.ErrKindState, -1, "writer already finished")
	}
	if !w.ended {
		return nil, types.Errorf(types.ErrKindState, -1, "class traversal not finished")
	}
	w.finished = true
	w.b.freeze()

	out := binary.BigEndian.AppendUint32(nil, format.Magic)
	out = binary.BigEndian.AppendUint16(out, w.minor)
	out = binary.BigEndian.AppendUint16(out, w.major)
	out = w.b.appendPool(out)
	out = binary.BigEndian.AppendUint16(out, uint16(w.access))
	out = binary.BigEndian.AppendUint16(out, w.thisIdx)
	out = binary.BigEndian.AppendUint16(out, w.superIdx)
	out = binary.BigEndian.AppendUint16(out, uint16(len(w.ifaceIdx)))
	for _, idx := range w.ifaceIdx {
		out = binary.BigEndian.AppendUint16(out, idx)
	}
	out = binary.BigEndian.AppendUint16(out, uint16(w.fieldCount))
	out = append(out, w.fields...)
	out = binary.BigEndian.AppendUint16(out, uint16(w.methodCount))
	out = append(out, w.methods...)
	out = binary.BigEndian.AppendUint16(out, uint16(w.attrCount))
	out = append(out, w.attrs...)
	return out, nil
}

func (w *Writer) checkOpen() error {
	if !w.started {
		return types.Errorf(types.ErrKindState, -1, "class not started")
	}
	if w.ended || w.finished {
		return types.Errorf(types.ErrKindState, -1, "class already ended")
	}
	return nil
}

// encodeAttr encodes one attribute record, rejecting raw payloads when no
// source pool was preloaded.
func (w *Writer) encodeAttr(attr types.Attribute) ([]byte, error) {
	if !w.b.Preloaded() {
		if _, ok := attr.(*types.RawAttribute); ok {
			return nil, types.Errorf(types.ErrKindUnresolved, -1,
				"raw attribute %v requires the source constant pool", attr.AttributeName())
		}
	}
	return encodeAttrRecord(attr, w.b, w.opts.AttrEncoders)
}

// flushAnnotations appends the collected annotation groups of a scope as
// Runtime(In)VisibleAnnotations attribute records.
func (w *Writer) flushAnnotations(dst []byte, count int, vis, invis []types.Annotation) ([]byte, int, error) {
	for _, group := range []struct {
		anns    []types.Annotation
		visible bool
	}{{vis, true}, {invis, false}} {
		if len(group.anns) == 0 {
			continue
		}
		attr := &types.AnnotationsAttr{Visible: group.visible, Annotations: group.anns}
		rec, err := encodeAttrRecord(attr, w.b, w.opts.AttrEncoders)
		if err != nil {
			return nil, 0, err
		}
		dst = append(dst, rec...)
		count++
	}
	return dst, count, nil
}

// flushParameterAnnotations appends the re-collected parameter annotation
// groups of a method scope as Runtime(In)VisibleParameterAnnotations
// attribute records.
func (w *Writer) flushParameterAnnotations(dst []byte, count int, vis, invis paramAnns) ([]byte, int, error) {
	for _, group := range []struct {
		anns    paramAnns
		visible bool
	}{{vis, true}, {invis, false}} {
		if !group.anns.seen {
			continue
		}
		attr := &types.ParameterAnnotationsAttr{Visible: group.visible, Parameters: group.anns.parameters}
		rec, err := encodeAttrRecord(attr, w.b, w.opts.AttrEncoders)
		if err != nil {
			return nil, 0, err
		}
		dst = append(dst, rec...)
		count++
	}
	return dst, count, nil
}

// memberWriter buffers one field or method scope and appends the finished
// record to the class body at scope end.
type memberWriter struct {
	w      *Writer
	m      types.Member
	method bool

	attrCount int
	attrs     []byte
	visAnns   []types.Annotation
	invisAnns []types.Annotation

	visParams   paramAnns
	invisParams paramAnns
}

// paramAnns re-collects one Runtime(In)VisibleParameterAnnotations attribute
// from its count and per-parameter events. The count is kept even when the
// trailing parameters carry no annotations.
type paramAnns struct {
	seen       bool
	parameters [][]types.Annotation
}

func (p *paramAnns) setCount(count uint8) {
	p.seen = true
	if int(count) > len(p.parameters) {
		grown := make([][]types.Annotation, count)
		copy(grown, p.parameters)
		p.parameters = grown
	}
}

func (p *paramAnns) add(param uint8, ann types.Annotation) {
	p.seen = true
	for int(param) >= len(p.parameters) {
		p.parameters = append(p.parameters, nil)
	}
	p.parameters[param] = append(p.parameters[param], ann)
}

func (w *Writer) newMember(m types.Member) *memberWriter {
	return &memberWriter{w: w, m: m}
}

func (m *memberWriter) VisitAnnotation(visible bool, descriptor types.JavaString) (types.AnnotationVisitor, error) {
	return collectAnnotation(descriptor, func(ann types.Annotation) error {
		if visible {
			m.visAnns = append(m.visAnns, ann)
		} else {
			m.invisAnns = append(m.invisAnns, ann)
		}
		return nil
	}), nil
}

func (m *memberWriter) VisitAnnotableParameterCount(visible bool, count uint8) error {
	if visible {
		m.visParams.setCount(count)
	} else {
		m.invisParams.setCount(count)
	}
	return nil
}

func (m *memberWriter) VisitParameterAnnotation(visible bool, param uint8, descriptor types.JavaString) (types.AnnotationVisitor, error) {
	return collectAnnotation(descriptor, func(ann types.Annotation) error {
		if visible {
			m.visParams.add(param, ann)
		} else {
			m.invisParams.add(param, ann)
		}
		return nil
	}), nil
}

func (m *memberWriter) VisitAttribute(attr types.Attribute) error {
	rec, err := m.w.encodeAttr(attr)
	if err != nil {
		return err
	}
	m.attrs = append(m.attrs, rec...)
	m.attrCount++
	return nil
}

// VisitCode serializes the method's Code attribute. A non-nil Bytecode
// region is written verbatim and needs the source pool; a nil region opts
// into reassembly and the returned sink collects the instruction events.
func (m *memberWriter) VisitCode(code *types.Code) (types.CodeVisitor, error) {
	if code.Bytecode != nil {
		if !m.w.b.Preloaded() {
			return nil, types.Errorf(types.ErrKindUnresolved, -1,
				"verbatim bytecode requires the source constant pool")
		}
		if err := m.appendCode(code); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return newCodeAssembler(m.w.b, code, m.appendCode), nil
}

func (m *memberWriter) appendCode(code *types.Code) error {
	if !m.w.b.Preloaded() {
		for _, attr := range code.Attrs {
			if _, ok := attr.(*types.RawAttribute); ok {
				return types.Errorf(types.ErrKindUnresolved, -1,
					"raw attribute %v requires the source constant pool", attr.AttributeName())
			}
		}
	}
	rec, err := encodeAttrRecord(code, m.w.b, m.w.opts.AttrEncoders)
	if err != nil {
		return err
	}
	m.attrs = append(m.attrs, rec...)
	m.attrCount++
	return nil
}

func (m *memberWriter) VisitEnd() error {
	var err error
	if m.attrs, m.attrCount, err = m.w.flushAnnotations(m.attrs, m.attrCount, m.visAnns, m.invisAnns); err != nil {
		return err
	}
	if m.attrs, m.attrCount, err = m.w.flushParameterAnnotations(m.attrs, m.attrCount, m.visParams, m.invisParams); err != nil {
		return err
	}
	nameIdx, err := m.w.b.Utf8(m.m.Name)
	if err != nil {
		return err
	}
	descIdx, err := m.w.b.Utf8(m.m.Descriptor)
	if err != nil {
		return err
	}
	rec := binary.BigEndian.AppendUint16(nil, uint16(m.m.Access))
	rec = binary.BigEndian.AppendUint16(rec, nameIdx)
	rec = binary.BigEndian.AppendUint16(rec, descIdx)
	rec = binary.BigEndian.AppendUint16(rec, uint16(m.attrCount))
	rec = append(rec, m.attrs...)
	if m.method {
		m.w.methods = append(m.w.methods, rec...)
		m.w.methodCount++
	} else {
		m.w.fields = append(m.w.fields, rec...)
		m.w.fieldCount++
	}
	return nil
}
