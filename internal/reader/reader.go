// Package reader decodes class files. A Reader indexes the constant pool and
// the class header on open; fields, methods, and attributes stay raw bytes
// until a traversal or a direct lookup touches them. All returned strings
// and byte slices borrow from the source buffer.
package reader

import (
	"github.com/Earthcomputer/classfile/internal/buf"
	"github.com/Earthcomputer/classfile/internal/format"
	"github.com/Earthcomputer/classfile/internal/mmfile"
	"github.com/Earthcomputer/classfile/internal/pool"
	"github.com/Earthcomputer/classfile/pkg/types"
)

// Reader is a parsed class file. It is safe for concurrent reads.
type Reader struct {
	data []byte
	opts types.OpenOptions
	pool *pool.Pool

	minor    uint16
	major    uint16
	access   types.AccessFlags
	thisIdx  uint16
	superIdx uint16
	ifaces   []uint16
	// bodyOff is the offset of the fields_count field.
	bodyOff int

	maxNesting int
	closeFn    func() error
}

// OpenBytes parses the header and constant pool of a class file held in
// memory. The Reader borrows data; the caller must keep it alive and
// unmodified for the Reader's lifetime.
func OpenBytes(data []byte, opts types.OpenOptions) (*Reader, error) {
	magic, err := buf.U32At(data, 0)
	if err != nil {
		return nil, err
	}
	if magic != format.Magic {
		return nil, types.Errorf(types.ErrKindFormat, 0, "bad magic %#08x", magic)
	}
	minor, err := buf.U16At(data, 4)
	if err != nil {
		return nil, err
	}
	major, err := buf.U16At(data, 6)
	if err != nil {
		return nil, err
	}
	if major < format.MinMajorVersion {
		return nil, types.Errorf(types.ErrKindVersion, 6, "class file version %d.%d predates the format", major, minor)
	}
	if major > format.LatestMajorVersion && !opts.AllowUnknownVersions {
		return nil, types.Errorf(types.ErrKindVersion, 6, "unsupported class file version %d.%d", major, minor)
	}

	cp, rest, err := pool.Scan(data)
	if err != nil {
		return nil, err
	}

	c := buf.NewAt(data[rest:], rest)
	access, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	thisIdx, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	superIdx, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	ifaceCount, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	ifaces := make([]uint16, ifaceCount)
	for i := range ifaces {
		if ifaces[i], err = c.ReadU16(); err != nil {
			return nil, err
		}
	}

	maxNesting := opts.MaxAnnotationNesting
	if maxNesting <= 0 {
		maxNesting = DefaultMaxAnnotationNesting
	}
	return &Reader{
		data:       data,
		opts:       opts,
		pool:       cp,
		minor:      minor,
		major:      major,
		access:     types.AccessFlags(access),
		thisIdx:    thisIdx,
		superIdx:   superIdx,
		ifaces:     ifaces,
		bodyOff:    c.AbsPos(),
		maxNesting: maxNesting,
	}, nil
}

// Open memory-maps the class file at path and parses it. Close releases the
// mapping.
func Open(path string, opts types.OpenOptions) (*Reader, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, err
	}
	r, err := OpenBytes(data, opts)
	if err != nil {
		cleanup()
		return nil, err
	}
	r.closeFn = cleanup
	return r, nil
}

// Close releases resources held by Open. It is a no-op for OpenBytes readers.
func (r *Reader) Close() error {
	if r.closeFn == nil {
		return nil
	}
	fn := r.closeFn
	r.closeFn = nil
	return fn()
}

func (r *Reader) MinorVersion() uint16      { return r.minor }
func (r *Reader) MajorVersion() uint16      { return r.major }
func (r *Reader) Access() types.AccessFlags { return r.access }
func (r *Reader) Pool() types.ConstantPool  { return r.pool }
func (r *Reader) InterfaceCount() int       { return len(r.ifaces) }

// ClassName resolves this_class.
func (r *Reader) ClassName() (types.JavaString, error) {
	return r.pool.ClassName(r.thisIdx)
}

// SuperName resolves super_class; the zero value means no superclass.
func (r *Reader) SuperName() (types.JavaString, error) {
	return r.pool.OptionalClassName(r.superIdx)
}

// Interfaces resolves the direct superinterface names in declaration order.
func (r *Reader) Interfaces() ([]types.JavaString, error) {
	names := make([]types.JavaString, len(r.ifaces))
	for i, idx := range r.ifaces {
		var err error
		if names[i], err = r.pool.ClassName(idx); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// ClassAttribute finds a class-level attribute by name without entering
// event mode. It returns the raw payload and whether the attribute exists.
func (r *Reader) ClassAttribute(name string) ([]byte, bool, error) {
	c := buf.NewAt(r.data[r.bodyOff:], r.bodyOff)
	for pass := 0; pass < 2; pass++ {
		// fields, then methods
		n, err := c.ReadU16()
		if err != nil {
			return nil, false, err
		}
		for i := 0; i < int(n); i++ {
			if err := c.Skip(6); err != nil {
				return nil, false, err
			}
			if err := skipAttributes(c); err != nil {
				return nil, false, err
			}
		}
	}
	n, err := c.ReadU16()
	if err != nil {
		return nil, false, err
	}
	for i := 0; i < int(n); i++ {
		attrName, data, err := r.readAttribute(c)
		if err != nil {
			return nil, false, err
		}
		if attrName.Key() == name {
			return data, true, nil
		}
	}
	return nil, false, nil
}

// readAttribute reads one attribute header and borrows its payload.
func (r *Reader) readAttribute(c *buf.Cursor) (types.JavaString, []byte, error) {
	nameIdx, err := c.ReadU16()
	if err != nil {
		return types.JavaString{}, nil, err
	}
	name, err := r.pool.Utf8(nameIdx)
	if err != nil {
		return types.JavaString{}, nil, err
	}
	length, err := c.ReadU32()
	if err != nil {
		return types.JavaString{}, nil, err
	}
	if int64(length) > int64(c.Remaining()) {
		return types.JavaString{}, nil, types.Errorf(types.ErrKindEOF, c.AbsPos(),
			"attribute length %d exceeds remaining %d bytes", length, c.Remaining())
	}
	data, err := c.ReadBytes(int(length))
	if err != nil {
		return types.JavaString{}, nil, err
	}
	return name, data, nil
}

// skipAttributes structurally skips an attribute table without resolving
// names or payloads.
func skipAttributes(c *buf.Cursor) error {
	n, err := c.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(n); i++ {
		if err := c.Skip(2); err != nil {
			return err
		}
		length, err := c.ReadU32()
		if err != nil {
			return err
		}
		if int64(length) > int64(c.Remaining()) {
			return types.Errorf(types.ErrKindEOF, c.AbsPos(),
				"attribute length %d exceeds remaining %d bytes", length, c.Remaining())
		}
		if err := c.Skip(int(length)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) classInfo() (types.ClassInfo, error) {
	name, err := r.ClassName()
	if err != nil {
		return types.ClassInfo{}, err
	}
	super, err := r.SuperName()
	if err != nil {
		return types.ClassInfo{}, err
	}
	ifaces, err := r.Interfaces()
	if err != nil {
		return types.ClassInfo{}, err
	}
	return types.ClassInfo{
		MinorVersion: r.minor,
		MajorVersion: r.major,
		Access:       r.access,
		Name:         name,
		SuperName:    super,
		Interfaces:   ifaces,
		Pool:         r.pool,
	}, nil
}

// Accept drives a full traversal into v in file order: the class header,
// each field, each method, then class-level attributes, then VisitEnd.
func (r *Reader) Accept(v types.ClassVisitor) error {
	info, err := r.classInfo()
	if err != nil {
		return err
	}
	if err := v.VisitClass(info); err != nil {
		return err
	}

	c := buf.NewAt(r.data[r.bodyOff:], r.bodyOff)

	nf, err := c.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(nf); i++ {
		m, err := r.readMember(c)
		if err != nil {
			return err
		}
		fv, err := v.VisitField(m)
		if err != nil {
			return err
		}
		if fv == nil {
			if err := skipAttributes(c); err != nil {
				return err
			}
			continue
		}
		if err := r.visitFieldAttrs(c, fv); err != nil {
			return err
		}
		if err := fv.VisitEnd(); err != nil {
			return err
		}
	}

	nm, err := c.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(nm); i++ {
		m, err := r.readMember(c)
		if err != nil {
			return err
		}
		mv, err := v.VisitMethod(m)
		if err != nil {
			return err
		}
		if mv == nil {
			if err := skipAttributes(c); err != nil {
				return err
			}
			continue
		}
		if err := r.visitMethodAttrs(c, mv); err != nil {
			return err
		}
		if err := mv.VisitEnd(); err != nil {
			return err
		}
	}

	na, err := c.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(na); i++ {
		name, data, err := r.readAttribute(c)
		if err != nil {
			return err
		}
		key := name.Key()
		if r.skipDebugAttr(key) {
			continue
		}
		if visible, ok := r.annotationAttr(key); ok {
			if err := r.streamAnnotations(v.VisitAnnotation, visible, data); err != nil {
				return err
			}
			continue
		}
		attr, err := r.decodeAttribute(name, data)
		if err != nil {
			return err
		}
		if err := v.VisitAttribute(attr); err != nil {
			return err
		}
	}
	return v.VisitEnd()
}

func (r *Reader) readMember(c *buf.Cursor) (types.Member, error) {
	access, err := c.ReadU16()
	if err != nil {
		return types.Member{}, err
	}
	nameIdx, err := c.ReadU16()
	if err != nil {
		return types.Member{}, err
	}
	descIdx, err := c.ReadU16()
	if err != nil {
		return types.Member{}, err
	}
	name, err := r.pool.Utf8(nameIdx)
	if err != nil {
		return types.Member{}, err
	}
	desc, err := r.pool.Utf8(descIdx)
	if err != nil {
		return types.Member{}, err
	}
	return types.Member{Access: types.AccessFlags(access), Name: name, Descriptor: desc}, nil
}

func (r *Reader) visitFieldAttrs(c *buf.Cursor, fv types.FieldVisitor) error {
	n, err := c.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(n); i++ {
		name, data, err := r.readAttribute(c)
		if err != nil {
			return err
		}
		key := name.Key()
		if r.skipDebugAttr(key) {
			continue
		}
		if visible, ok := r.annotationAttr(key); ok {
			if err := r.streamAnnotations(fv.VisitAnnotation, visible, data); err != nil {
				return err
			}
			continue
		}
		attr, err := r.decodeAttribute(name, data)
		if err != nil {
			return err
		}
		if err := fv.VisitAttribute(attr); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) visitMethodAttrs(c *buf.Cursor, mv types.MethodVisitor) error {
	n, err := c.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(n); i++ {
		name, data, err := r.readAttribute(c)
		if err != nil {
			return err
		}
		key := name.Key()
		if r.skipDebugAttr(key) {
			continue
		}
		if key == format.AttrCode && !r.customDecoder(key) {
			if r.opts.SkipCode {
				continue
			}
			if err := r.visitCode(data, mv); err != nil {
				return err
			}
			continue
		}
		if visible, ok := r.annotationAttr(key); ok {
			if err := r.streamAnnotations(mv.VisitAnnotation, visible, data); err != nil {
				return err
			}
			continue
		}
		if visible, ok := r.paramAnnotationAttr(key); ok {
			if err := r.streamParameterAnnotations(mv, visible, data); err != nil {
				return err
			}
			continue
		}
		attr, err := r.decodeAttribute(name, data)
		if err != nil {
			return err
		}
		if err := mv.VisitAttribute(attr); err != nil {
			return err
		}
	}
	return nil
}

// visitCode decodes a Code attribute, delivers it, and streams instructions
// if the sink opted in.
func (r *Reader) visitCode(data []byte, mv types.MethodVisitor) error {
	c := buf.New(data)
	code := &types.Code{}
	var err error
	if code.MaxStack, err = c.ReadU16(); err != nil {
		return err
	}
	if code.MaxLocals, err = c.ReadU16(); err != nil {
		return err
	}
	codeLen, err := c.ReadU32()
	if err != nil {
		return err
	}
	if int64(codeLen) > int64(c.Remaining()) {
		return types.Errorf(types.ErrKindAttribute, c.Pos(),
			"code length %d exceeds remaining %d bytes", codeLen, c.Remaining())
	}
	if code.Bytecode, err = c.ReadBytes(int(codeLen)); err != nil {
		return err
	}
	excCount, err := c.ReadU16()
	if err != nil {
		return err
	}
	code.Handlers = make([]types.ExceptionHandler, excCount)
	for i := range code.Handlers {
		h := &code.Handlers[i]
		if h.StartPC, err = c.ReadU16(); err != nil {
			return err
		}
		if h.EndPC, err = c.ReadU16(); err != nil {
			return err
		}
		if h.HandlerPC, err = c.ReadU16(); err != nil {
			return err
		}
		catchIdx, err := c.ReadU16()
		if err != nil {
			return err
		}
		if h.CatchType, err = r.pool.OptionalClassName(catchIdx); err != nil {
			return err
		}
	}
	nattrs, err := c.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(nattrs); i++ {
		name, payload, err := r.readAttribute(c)
		if err != nil {
			return err
		}
		if r.skipDebugAttr(name.Key()) {
			continue
		}
		attr, err := r.decodeAttribute(name, payload)
		if err != nil {
			return err
		}
		code.Attrs = append(code.Attrs, attr)
	}
	if c.Remaining() != 0 {
		return types.Errorf(types.ErrKindAttribute, c.Pos(),
			"Code attribute has %d trailing bytes", c.Remaining())
	}

	cv, err := mv.VisitCode(code)
	if err != nil {
		return err
	}
	if cv == nil {
		return nil
	}
	return streamInstructions(code.Bytecode, r.pool, cv)
}

// streamAnnotations decodes a Runtime(In)VisibleAnnotations payload and
// delivers one annotation scope per entry.
func (r *Reader) streamAnnotations(start func(bool, types.JavaString) (types.AnnotationVisitor, error), visible bool, data []byte) error {
	anns, err := decodeAnnotationList(data, r.pool, r.maxNesting)
	if err != nil {
		return err
	}
	for _, ann := range anns {
		av, err := start(visible, ann.Descriptor)
		if err != nil {
			return err
		}
		if err := replayAnnotation(av, ann); err != nil {
			return err
		}
	}
	return nil
}

// annotationAttr reports whether the name is an annotation attribute the
// traversal streams, and whether it is the runtime-visible variant. Custom
// decoders take the attribute out of the streaming path.
func (r *Reader) annotationAttr(key string) (visible, ok bool) {
	if r.customDecoder(key) {
		return false, false
	}
	switch key {
	case format.AttrRuntimeVisibleAnnotations:
		return true, true
	case format.AttrRuntimeInvisibleAnnotations:
		return false, true
	}
	return false, false
}

// paramAnnotationAttr is annotationAttr for the per-parameter variants,
// which only occur in method scopes.
func (r *Reader) paramAnnotationAttr(key string) (visible, ok bool) {
	if r.customDecoder(key) {
		return false, false
	}
	switch key {
	case format.AttrRuntimeVisibleParameterAnnotations:
		return true, true
	case format.AttrRuntimeInvisibleParameterAnnotations:
		return false, true
	}
	return false, false
}

// streamParameterAnnotations decodes a Runtime(In)VisibleParameterAnnotations
// payload: the annotable parameter count event first, then one annotation
// scope per entry tagged with its parameter index.
func (r *Reader) streamParameterAnnotations(mv types.MethodVisitor, visible bool, data []byte) error {
	c := buf.New(data)
	count, err := c.ReadU8()
	if err != nil {
		return err
	}
	if err := mv.VisitAnnotableParameterCount(visible, count); err != nil {
		return err
	}
	for param := 0; param < int(count); param++ {
		n, err := c.ReadU16()
		if err != nil {
			return err
		}
		for i := 0; i < int(n); i++ {
			ann, err := decodeAnnotation(c, r.pool, r.maxNesting)
			if err != nil {
				return err
			}
			av, err := mv.VisitParameterAnnotation(visible, uint8(param), ann.Descriptor)
			if err != nil {
				return err
			}
			if err := replayAnnotation(av, ann); err != nil {
				return err
			}
		}
	}
	if c.Remaining() != 0 {
		return types.Errorf(types.ErrKindAttribute, c.Pos(),
			"parameter annotations attribute has %d trailing bytes", c.Remaining())
	}
	return nil
}

func (r *Reader) customDecoder(key string) bool {
	_, ok := r.opts.AttrDecoders[key]
	return ok
}

func (r *Reader) skipDebugAttr(key string) bool {
	if !r.opts.SkipDebug {
		return false
	}
	switch key {
	case format.AttrSourceFile, format.AttrSourceDebugExtension,
		format.AttrLineNumberTable, format.AttrLocalVariableTable,
		format.AttrLocalVariableTypeTable:
		return true
	}
	return false
}

// decodeAttribute resolves an attribute through the decoder registry:
// caller-supplied decoders first, then the built-ins, then raw passthrough.
// A nil caller-supplied decoder forces raw passthrough.
func (r *Reader) decodeAttribute(name types.JavaString, data []byte) (types.Attribute, error) {
	key := name.Key()
	if dec, ok := r.opts.AttrDecoders[key]; ok {
		if dec == nil {
			return &types.RawAttribute{Name: name, Data: data}, nil
		}
		return dec(name, data, r.pool)
	}
	if key == format.AttrAnnotationDefault {
		return decodeAnnotationDefaultDepth(data, r.pool, r.maxNesting)
	}
	if dec, ok := builtinDecoders[key]; ok {
		return dec(name, data, r.pool)
	}
	return &types.RawAttribute{Name: name, Data: data}, nil
}
