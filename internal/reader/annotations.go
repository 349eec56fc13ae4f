package reader

import (
	"github.com/Earthcomputer/classfile/internal/buf"
	"github.com/Earthcomputer/classfile/internal/format"
	"github.com/Earthcomputer/classfile/pkg/types"
)

// DefaultMaxAnnotationNesting bounds element value recursion when the caller
// does not configure a limit. Real annotations nest a handful of levels; the
// cap exists so a malicious payload cannot exhaust the stack.
const DefaultMaxAnnotationNesting = 64

// decodeAnnotationList parses the payload of a Runtime(In)VisibleAnnotations
// attribute into a tree.
func decodeAnnotationList(data []byte, pool types.ConstantPool, depth int) ([]types.Annotation, error) {
	c := buf.New(data)
	n, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	anns := make([]types.Annotation, n)
	for i := range anns {
		if anns[i], err = decodeAnnotation(c, pool, depth); err != nil {
			return nil, err
		}
	}
	if c.Remaining() != 0 {
		return nil, types.Errorf(types.ErrKindAttribute, c.Pos(),
			"annotations attribute has %d trailing bytes", c.Remaining())
	}
	return anns, nil
}

func decodeAnnotation(c *buf.Cursor, pool types.ConstantPool, depth int) (types.Annotation, error) {
	if depth <= 0 {
		return types.Annotation{}, types.Errorf(types.ErrKindAttribute, c.Pos(),
			"annotation nesting too deep")
	}
	typeIdx, err := c.ReadU16()
	if err != nil {
		return types.Annotation{}, err
	}
	desc, err := pool.Utf8(typeIdx)
	if err != nil {
		return types.Annotation{}, err
	}
	n, err := c.ReadU16()
	if err != nil {
		return types.Annotation{}, err
	}
	values := make([]types.ElementValuePair, n)
	for i := range values {
		nameIdx, err := c.ReadU16()
		if err != nil {
			return types.Annotation{}, err
		}
		if values[i].Name, err = pool.Utf8(nameIdx); err != nil {
			return types.Annotation{}, err
		}
		if values[i].Value, err = decodeElementValue(c, pool, depth-1); err != nil {
			return types.Annotation{}, err
		}
	}
	return types.Annotation{Descriptor: desc, Values: values}, nil
}

func decodeElementValue(c *buf.Cursor, pool types.ConstantPool, depth int) (types.ElementValue, error) {
	if depth <= 0 {
		return nil, types.Errorf(types.ErrKindAttribute, c.Pos(),
			"annotation nesting too deep")
	}
	pos := c.Pos()
	tag, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 'B', 'C', 'I', 'S', 'Z':
		idx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		v, err := pool.Integer(idx)
		if err != nil {
			return nil, err
		}
		return types.ConstElement{Tag: tag, Value: types.IntConst(v)}, nil
	case 'D':
		idx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		v, err := pool.Double(idx)
		if err != nil {
			return nil, err
		}
		return types.ConstElement{Tag: tag, Value: types.DoubleConst(v)}, nil
	case 'F':
		idx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		v, err := pool.Float(idx)
		if err != nil {
			return nil, err
		}
		return types.ConstElement{Tag: tag, Value: types.FloatConst(v)}, nil
	case 'J':
		idx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		v, err := pool.Long(idx)
		if err != nil {
			return nil, err
		}
		return types.ConstElement{Tag: tag, Value: types.LongConst(v)}, nil
	case 's':
		idx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		v, err := pool.Utf8(idx)
		if err != nil {
			return nil, err
		}
		return types.ConstElement{Tag: tag, Value: types.StringConst{Value: v}}, nil
	case 'e':
		typeIdx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		constIdx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		typeName, err := pool.Utf8(typeIdx)
		if err != nil {
			return nil, err
		}
		constName, err := pool.Utf8(constIdx)
		if err != nil {
			return nil, err
		}
		return types.EnumElement{TypeName: typeName, ConstName: constName}, nil
	case 'c':
		idx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		desc, err := pool.Utf8(idx)
		if err != nil {
			return nil, err
		}
		return types.ClassElement{Descriptor: desc}, nil
	case '@':
		ann, err := decodeAnnotation(c, pool, depth)
		if err != nil {
			return nil, err
		}
		return types.AnnotationElement{Annotation: ann}, nil
	case '[':
		n, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		values := make([]types.ElementValue, n)
		for i := range values {
			if values[i], err = decodeElementValue(c, pool, depth-1); err != nil {
				return nil, err
			}
		}
		return types.ArrayElement{Values: values}, nil
	}
	return nil, types.Errorf(types.ErrKindAttribute, pos,
		"unknown element value tag %q", tag)
}

// decodeAnnotationDefault parses an AnnotationDefault payload with the
// package default nesting limit; the traversal calls the depth-aware form.
func decodeAnnotationDefault(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	return decodeAnnotationDefaultDepth(data, pool, DefaultMaxAnnotationNesting)
}

func decodeAnnotationDefaultDepth(data []byte, pool types.ConstantPool, depth int) (types.Attribute, error) {
	c := buf.New(data)
	v, err := decodeElementValue(c, pool, depth)
	if err != nil {
		return nil, err
	}
	if err := finish(c, format.AttrAnnotationDefault); err != nil {
		return nil, err
	}
	return &types.AnnotationDefaultAttr{Value: v}, nil
}

// replayAnnotation streams a decoded annotation's element values into av and
// closes the scope. av may be nil to drop the annotation.
func replayAnnotation(av types.AnnotationVisitor, ann types.Annotation) error {
	if av == nil {
		return nil
	}
	for _, pair := range ann.Values {
		if err := replayElementValue(av, pair.Name, pair.Value); err != nil {
			return err
		}
	}
	return av.VisitEnd()
}

func replayElementValue(av types.AnnotationVisitor, name types.JavaString, value types.ElementValue) error {
	switch v := value.(type) {
	case types.ConstElement:
		return av.VisitValue(name, v.Tag, v.Value)
	case types.EnumElement:
		return av.VisitEnum(name, v.TypeName, v.ConstName)
	case types.ClassElement:
		return av.VisitClass(name, v.Descriptor)
	case types.AnnotationElement:
		nested, err := av.VisitNested(name, v.Annotation.Descriptor)
		if err != nil {
			return err
		}
		return replayAnnotation(nested, v.Annotation)
	case types.ArrayElement:
		arr, err := av.VisitArray(name)
		if err != nil {
			return err
		}
		if arr == nil {
			return nil
		}
		for _, elem := range v.Values {
			if err := replayElementValue(arr, types.JavaString{}, elem); err != nil {
				return err
			}
		}
		return arr.VisitEnd()
	}
	return types.Errorf(types.ErrKindState, -1, "unknown element value type %T", value)
}
