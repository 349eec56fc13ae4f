package writer

import (
	"encoding/binary"

	"github.com/Earthcomputer/classfile/pkg/types"
)

func appendAnnotationList(dst []byte, anns []types.Annotation, b types.PoolBuilder) ([]byte, error) {
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(anns)))
	var err error
	for _, ann := range anns {
		if dst, err = appendAnnotation(dst, ann, b); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func appendAnnotation(dst []byte, ann types.Annotation, b types.PoolBuilder) ([]byte, error) {
	typeIdx, err := b.Utf8(ann.Descriptor)
	if err != nil {
		return nil, err
	}
	dst = binary.BigEndian.AppendUint16(dst, typeIdx)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(ann.Values)))
	for _, pair := range ann.Values {
		nameIdx, err := b.Utf8(pair.Name)
		if err != nil {
			return nil, err
		}
		dst = binary.BigEndian.AppendUint16(dst, nameIdx)
		if dst, err = appendElementValue(dst, pair.Value, b); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func appendElementValue(dst []byte, value types.ElementValue, b types.PoolBuilder) ([]byte, error) {
	switch v := value.(type) {
	case types.ConstElement:
		idx, err := b.Const(v.Value)
		if err != nil {
			return nil, err
		}
		dst = append(dst, v.Tag)
		return binary.BigEndian.AppendUint16(dst, idx), nil
	case types.EnumElement:
		typeIdx, err := b.Utf8(v.TypeName)
		if err != nil {
			return nil, err
		}
		constIdx, err := b.Utf8(v.ConstName)
		if err != nil {
			return nil, err
		}
		dst = append(dst, 'e')
		dst = binary.BigEndian.AppendUint16(dst, typeIdx)
		return binary.BigEndian.AppendUint16(dst, constIdx), nil
	case types.ClassElement:
		idx, err := b.Utf8(v.Descriptor)
		if err != nil {
			return nil, err
		}
		dst = append(dst, 'c')
		return binary.BigEndian.AppendUint16(dst, idx), nil
	case types.AnnotationElement:
		dst = append(dst, '@')
		return appendAnnotation(dst, v.Annotation, b)
	case types.ArrayElement:
		dst = append(dst, '[')
		dst = binary.BigEndian.AppendUint16(dst, uint16(len(v.Values)))
		var err error
		for _, elem := range v.Values {
			if dst, err = appendElementValue(dst, elem, b); err != nil {
				return nil, err
			}
		}
		return dst, nil
	}
	return nil, types.Errorf(types.ErrKindUnresolved, -1, "unknown element value type %T", value)
}

// annotationCollector rebuilds an annotation tree from streamed element
// value events. done receives the finished annotation at VisitEnd.
type annotationCollector struct {
	ann  types.Annotation
	done func(types.Annotation) error
}

func collectAnnotation(descriptor types.JavaString, done func(types.Annotation) error) *annotationCollector {
	return &annotationCollector{ann: types.Annotation{Descriptor: descriptor}, done: done}
}

func (c *annotationCollector) put(name types.JavaString, v types.ElementValue) {
	c.ann.Values = append(c.ann.Values, types.ElementValuePair{Name: name, Value: v})
}

func (c *annotationCollector) VisitValue(name types.JavaString, tag byte, value types.Const) error {
	c.put(name, types.ConstElement{Tag: tag, Value: value})
	return nil
}

func (c *annotationCollector) VisitEnum(name, typeName, constName types.JavaString) error {
	c.put(name, types.EnumElement{TypeName: typeName, ConstName: constName})
	return nil
}

func (c *annotationCollector) VisitClass(name, descriptor types.JavaString) error {
	c.put(name, types.ClassElement{Descriptor: descriptor})
	return nil
}

func (c *annotationCollector) VisitNested(name, descriptor types.JavaString) (types.AnnotationVisitor, error) {
	return collectAnnotation(descriptor, func(ann types.Annotation) error {
		c.put(name, types.AnnotationElement{Annotation: ann})
		return nil
	}), nil
}

func (c *annotationCollector) VisitArray(name types.JavaString) (types.AnnotationVisitor, error) {
	return &arrayCollector{done: func(values []types.ElementValue) error {
		c.put(name, types.ArrayElement{Values: values})
		return nil
	}}, nil
}

func (c *annotationCollector) VisitEnd() error {
	return c.done(c.ann)
}

// arrayCollector gathers an array scope; element names are ignored as the
// contract leaves them zero inside arrays.
type arrayCollector struct {
	values []types.ElementValue
	done   func([]types.ElementValue) error
}

func (c *arrayCollector) VisitValue(name types.JavaString, tag byte, value types.Const) error {
	c.values = append(c.values, types.ConstElement{Tag: tag, Value: value})
	return nil
}

func (c *arrayCollector) VisitEnum(name, typeName, constName types.JavaString) error {
	c.values = append(c.values, types.EnumElement{TypeName: typeName, ConstName: constName})
	return nil
}

func (c *arrayCollector) VisitClass(name, descriptor types.JavaString) error {
	c.values = append(c.values, types.ClassElement{Descriptor: descriptor})
	return nil
}

func (c *arrayCollector) VisitNested(name, descriptor types.JavaString) (types.AnnotationVisitor, error) {
	return collectAnnotation(descriptor, func(ann types.Annotation) error {
		c.values = append(c.values, types.AnnotationElement{Annotation: ann})
		return nil
	}), nil
}

func (c *arrayCollector) VisitArray(name types.JavaString) (types.AnnotationVisitor, error) {
	return &arrayCollector{done: func(values []types.ElementValue) error {
		c.values = append(c.values, types.ArrayElement{Values: values})
		return nil
	}}, nil
}

func (c *arrayCollector) VisitEnd() error {
	return c.done(c.values)
}
