package types

// Forwarding visitors pass every event unchanged to a downstream sink. A
// transformer embeds the forwarding type for its scope and overrides only
// the events it has an opinion about; everything else, including attribute
// kinds it has never heard of, reaches the downstream sink intact. A nil
// Next discards the scope's events.

// ForwardingClassVisitor forwards class-scope events to Next.
type ForwardingClassVisitor struct {
	Next ClassVisitor
}

func (f *ForwardingClassVisitor) VisitClass(info ClassInfo) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.VisitClass(info)
}

func (f *ForwardingClassVisitor) VisitField(m Member) (FieldVisitor, error) {
	if f.Next == nil {
		return nil, nil
	}
	return f.Next.VisitField(m)
}

func (f *ForwardingClassVisitor) VisitMethod(m Member) (MethodVisitor, error) {
	if f.Next == nil {
		return nil, nil
	}
	return f.Next.VisitMethod(m)
}

func (f *ForwardingClassVisitor) VisitAnnotation(visible bool, descriptor JavaString) (AnnotationVisitor, error) {
	if f.Next == nil {
		return nil, nil
	}
	return f.Next.VisitAnnotation(visible, descriptor)
}

func (f *ForwardingClassVisitor) VisitAttribute(attr Attribute) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.VisitAttribute(attr)
}

func (f *ForwardingClassVisitor) VisitEnd() error {
	if f.Next == nil {
		return nil
	}
	return f.Next.VisitEnd()
}

// ForwardingFieldVisitor forwards field-scope events to Next.
type ForwardingFieldVisitor struct {
	Next FieldVisitor
}

func (f *ForwardingFieldVisitor) VisitAnnotation(visible bool, descriptor JavaString) (AnnotationVisitor, error) {
	if f.Next == nil {
		return nil, nil
	}
	return f.Next.VisitAnnotation(visible, descriptor)
}

func (f *ForwardingFieldVisitor) VisitAttribute(attr Attribute) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.VisitAttribute(attr)
}

func (f *ForwardingFieldVisitor) VisitEnd() error {
	if f.Next == nil {
		return nil
	}
	return f.Next.VisitEnd()
}

// ForwardingMethodVisitor forwards method-scope events to Next.
type ForwardingMethodVisitor struct {
	Next MethodVisitor
}

func (f *ForwardingMethodVisitor) VisitCode(code *Code) (CodeVisitor, error) {
	if f.Next == nil {
		return nil, nil
	}
	return f.Next.VisitCode(code)
}

func (f *ForwardingMethodVisitor) VisitAnnotation(visible bool, descriptor JavaString) (AnnotationVisitor, error) {
	if f.Next == nil {
		return nil, nil
	}
	return f.Next.VisitAnnotation(visible, descriptor)
}

func (f *ForwardingMethodVisitor) VisitAnnotableParameterCount(visible bool, count uint8) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.VisitAnnotableParameterCount(visible, count)
}

func (f *ForwardingMethodVisitor) VisitParameterAnnotation(visible bool, param uint8, descriptor JavaString) (AnnotationVisitor, error) {
	if f.Next == nil {
		return nil, nil
	}
	return f.Next.VisitParameterAnnotation(visible, param, descriptor)
}

func (f *ForwardingMethodVisitor) VisitAttribute(attr Attribute) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.VisitAttribute(attr)
}

func (f *ForwardingMethodVisitor) VisitEnd() error {
	if f.Next == nil {
		return nil
	}
	return f.Next.VisitEnd()
}

// ForwardingCodeVisitor forwards instruction events to Next.
type ForwardingCodeVisitor struct {
	Next CodeVisitor
}

func (f *ForwardingCodeVisitor) VisitInsn(ins Instruction) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.VisitInsn(ins)
}

func (f *ForwardingCodeVisitor) VisitEnd() error {
	if f.Next == nil {
		return nil
	}
	return f.Next.VisitEnd()
}

// ForwardingAnnotationVisitor forwards annotation events to Next.
type ForwardingAnnotationVisitor struct {
	Next AnnotationVisitor
}

func (f *ForwardingAnnotationVisitor) VisitValue(name JavaString, tag byte, value Const) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.VisitValue(name, tag, value)
}

func (f *ForwardingAnnotationVisitor) VisitEnum(name, typeName, constName JavaString) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.VisitEnum(name, typeName, constName)
}

func (f *ForwardingAnnotationVisitor) VisitClass(name, descriptor JavaString) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.VisitClass(name, descriptor)
}

func (f *ForwardingAnnotationVisitor) VisitNested(name, descriptor JavaString) (AnnotationVisitor, error) {
	if f.Next == nil {
		return nil, nil
	}
	return f.Next.VisitNested(name, descriptor)
}

func (f *ForwardingAnnotationVisitor) VisitArray(name JavaString) (AnnotationVisitor, error) {
	if f.Next == nil {
		return nil, nil
	}
	return f.Next.VisitArray(name)
}

func (f *ForwardingAnnotationVisitor) VisitEnd() error {
	if f.Next == nil {
		return nil
	}
	return f.Next.VisitEnd()
}
