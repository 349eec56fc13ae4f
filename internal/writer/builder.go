// Package writer serializes class files. A Writer consumes the same event
// contract a Reader produces; the Builder is its write-side constant pool,
// interning values in first-seen order so re-serialization is deterministic.
package writer

import (
	"encoding/binary"
	"math"

	"github.com/Earthcomputer/classfile/internal/format"
	"github.com/Earthcomputer/classfile/pkg/types"
)

// poolKey identifies a pool entry by resolved value for deduplication.
type poolKey struct {
	tag  types.ConstantTag
	kind types.HandleKind
	num  uint64
	s1   string
	s2   string
	s3   string
	b    bool
}

// Builder interns constants into pool entries. Indices are assigned in
// first-seen order and never move; long and double entries consume two
// slots. The zero Builder is not usable, call NewBuilder.
type Builder struct {
	// entries[i] is the entry assigned to file index i+1. Shadow slots of
	// wide entries hold a zero Tag and are skipped on emission.
	entries   []types.PoolEntry
	lookup    map[poolKey]uint16
	frozen    bool
	preloaded bool
}

func NewBuilder() *Builder {
	return &Builder{lookup: make(map[poolKey]uint16)}
}

// Count returns the pool count as it will be written: slots plus one for
// the reserved index 0.
func (b *Builder) Count() int { return len(b.entries) + 1 }

// Preloaded reports whether the builder was seeded from a source pool, which
// is what keeps embedded indices in opaque payloads valid.
func (b *Builder) Preloaded() bool { return b.preloaded }

func (b *Builder) add(k poolKey, e types.PoolEntry) (uint16, error) {
	if idx, ok := b.lookup[k]; ok {
		return idx, nil
	}
	return b.append(k, e, true)
}

// append places e in the next slot. dedupe controls whether the key is
// registered for reuse; preloaded duplicates keep only their first index.
func (b *Builder) append(k poolKey, e types.PoolEntry, dedupe bool) (uint16, error) {
	if b.frozen {
		return 0, types.Errorf(types.ErrKindState, -1, "constant pool already finalized")
	}
	slots := 1
	if e.Tag.Wide() {
		slots = 2
	}
	if len(b.entries)+1+slots > format.MaxPoolSlots {
		return 0, types.Errorf(types.ErrKindOverflow, -1,
			"constant pool cannot hold more than %d slots", format.MaxPoolSlots)
	}
	idx := uint16(len(b.entries) + 1)
	b.entries = append(b.entries, e)
	if slots == 2 {
		b.entries = append(b.entries, types.PoolEntry{})
	}
	if dedupe {
		if _, ok := b.lookup[k]; !ok {
			b.lookup[k] = idx
		}
	}
	return idx, nil
}

func (b *Builder) Utf8(s types.JavaString) (uint16, error) {
	if s.IsZero() {
		return 0, types.Errorf(types.ErrKindUnresolved, -1, "cannot intern an absent string")
	}
	if s.Len() > 0xFFFF {
		return 0, types.Errorf(types.ErrKindFormat, -1,
			"string of %d bytes exceeds the Utf8 length limit", s.Len())
	}
	return b.add(poolKey{tag: types.TagUtf8, s1: s.Key()}, types.PoolEntry{Tag: types.TagUtf8, Utf8: s})
}

func (b *Builder) Integer(v int32) (uint16, error) {
	return b.add(poolKey{tag: types.TagInteger, num: uint64(uint32(v))},
		types.PoolEntry{Tag: types.TagInteger, Int: v})
}

func (b *Builder) Float(v float32) (uint16, error) {
	// Keyed by bit pattern so every NaN payload and both zeros round-trip.
	return b.add(poolKey{tag: types.TagFloat, num: uint64(math.Float32bits(v))},
		types.PoolEntry{Tag: types.TagFloat, F32: v})
}

func (b *Builder) Long(v int64) (uint16, error) {
	return b.add(poolKey{tag: types.TagLong, num: uint64(v)},
		types.PoolEntry{Tag: types.TagLong, Long: v})
}

func (b *Builder) Double(v float64) (uint16, error) {
	return b.add(poolKey{tag: types.TagDouble, num: math.Float64bits(v)},
		types.PoolEntry{Tag: types.TagDouble, F64: v})
}

// utf8Ref interns a single-operand entry whose payload is a Utf8 index.
func (b *Builder) utf8Ref(tag types.ConstantTag, s types.JavaString) (uint16, error) {
	k := poolKey{tag: tag, s1: s.Key()}
	if idx, ok := b.lookup[k]; ok {
		return idx, nil
	}
	ref, err := b.Utf8(s)
	if err != nil {
		return 0, err
	}
	return b.add(k, types.PoolEntry{Tag: tag, Ref1: ref})
}

func (b *Builder) Class(name types.JavaString) (uint16, error) {
	return b.utf8Ref(types.TagClass, name)
}

func (b *Builder) String(value types.JavaString) (uint16, error) {
	return b.utf8Ref(types.TagString, value)
}

func (b *Builder) MethodType(descriptor types.JavaString) (uint16, error) {
	return b.utf8Ref(types.TagMethodType, descriptor)
}

func (b *Builder) Module(name types.JavaString) (uint16, error) {
	return b.utf8Ref(types.TagModule, name)
}

func (b *Builder) Package(name types.JavaString) (uint16, error) {
	return b.utf8Ref(types.TagPackage, name)
}

func (b *Builder) NameAndType(nt types.NameAndType) (uint16, error) {
	k := poolKey{tag: types.TagNameAndType, s1: nt.Name.Key(), s2: nt.Descriptor.Key()}
	if idx, ok := b.lookup[k]; ok {
		return idx, nil
	}
	nameIdx, err := b.Utf8(nt.Name)
	if err != nil {
		return 0, err
	}
	descIdx, err := b.Utf8(nt.Descriptor)
	if err != nil {
		return 0, err
	}
	return b.add(k, types.PoolEntry{Tag: types.TagNameAndType, Ref1: nameIdx, Ref2: descIdx})
}

func (b *Builder) memberRef(tag types.ConstantTag, ref types.MemberRef) (uint16, error) {
	k := poolKey{tag: tag, s1: ref.Owner.Key(), s2: ref.Name.Key(), s3: ref.Descriptor.Key()}
	if idx, ok := b.lookup[k]; ok {
		return idx, nil
	}
	classIdx, err := b.Class(ref.Owner)
	if err != nil {
		return 0, err
	}
	natIdx, err := b.NameAndType(types.NameAndType{Name: ref.Name, Descriptor: ref.Descriptor})
	if err != nil {
		return 0, err
	}
	return b.add(k, types.PoolEntry{Tag: tag, Ref1: classIdx, Ref2: natIdx})
}

func (b *Builder) FieldRef(ref types.MemberRef) (uint16, error) {
	return b.memberRef(types.TagFieldRef, ref)
}

func (b *Builder) MethodRef(ref types.MemberRef) (uint16, error) {
	return b.memberRef(types.TagMethodRef, ref)
}

func (b *Builder) InterfaceMethodRef(ref types.MemberRef) (uint16, error) {
	return b.memberRef(types.TagInterfaceMethodRef, ref)
}

func (b *Builder) MethodHandle(h types.Handle) (uint16, error) {
	if !h.Kind.Valid() {
		return 0, types.Errorf(types.ErrKindUnresolved, -1,
			"method handle has invalid reference kind %d", h.Kind)
	}
	iface := h.IsInterface || h.Kind == types.HandleInvokeInterface
	k := poolKey{
		tag: types.TagMethodHandle, kind: h.Kind, b: iface,
		s1: h.Owner.Key(), s2: h.Name.Key(), s3: h.Descriptor.Key(),
	}
	if idx, ok := b.lookup[k]; ok {
		return idx, nil
	}
	ref := types.MemberRef{Owner: h.Owner, Name: h.Name, Descriptor: h.Descriptor}
	var refIdx uint16
	var err error
	switch {
	case h.Kind.FieldKind():
		refIdx, err = b.FieldRef(ref)
	case iface:
		refIdx, err = b.InterfaceMethodRef(ref)
	default:
		refIdx, err = b.MethodRef(ref)
	}
	if err != nil {
		return 0, err
	}
	return b.add(k, types.PoolEntry{Tag: types.TagMethodHandle, Kind: h.Kind, Ref1: refIdx})
}

func (b *Builder) dynamicRef(tag types.ConstantTag, ref types.DynamicRef) (uint16, error) {
	k := poolKey{tag: tag, num: uint64(ref.BootstrapIndex), s1: ref.Name.Key(), s2: ref.Descriptor.Key()}
	if idx, ok := b.lookup[k]; ok {
		return idx, nil
	}
	natIdx, err := b.NameAndType(types.NameAndType{Name: ref.Name, Descriptor: ref.Descriptor})
	if err != nil {
		return 0, err
	}
	return b.add(k, types.PoolEntry{Tag: tag, Ref1: ref.BootstrapIndex, Ref2: natIdx})
}

func (b *Builder) Dynamic(ref types.DynamicRef) (uint16, error) {
	return b.dynamicRef(types.TagDynamic, ref)
}

func (b *Builder) InvokeDynamic(ref types.DynamicRef) (uint16, error) {
	return b.dynamicRef(types.TagInvokeDynamic, ref)
}

// Const interns a loadable constant of any kind.
func (b *Builder) Const(c types.Const) (uint16, error) {
	switch v := c.(type) {
	case types.IntConst:
		return b.Integer(int32(v))
	case types.FloatConst:
		return b.Float(float32(v))
	case types.LongConst:
		return b.Long(int64(v))
	case types.DoubleConst:
		return b.Double(float64(v))
	case types.StringConst:
		return b.String(v.Value)
	case types.ClassConst:
		return b.Class(v.Name)
	case types.MethodTypeConst:
		return b.MethodType(v.Descriptor)
	case types.HandleConst:
		return b.MethodHandle(v.Handle)
	case types.DynamicConst:
		return b.Dynamic(v.Ref)
	}
	return 0, types.Errorf(types.ErrKindUnresolved, -1, "unknown constant type %T", c)
}

// Preload copies every entry of a source pool at its original index, so
// opaque payloads that embed pool indices remain valid in the output.
// Resolvable entries also register for deduplication; entries that do not
// resolve are copied verbatim and simply never deduplicate.
func (b *Builder) Preload(src types.ConstantPool) error {
	if len(b.entries) != 0 {
		return types.Errorf(types.ErrKindState, -1, "pool already has interned entries")
	}
	count := src.Count()
	for i := 1; i < count; i++ {
		tag, err := src.Tag(uint16(i))
		if err != nil {
			// Shadow slot of the preceding wide entry; append already
			// accounted for it.
			continue
		}
		e, err := src.Entry(uint16(i))
		if err != nil {
			return err
		}
		k, keyed := b.sourceKey(src, uint16(i), tag)
		if _, err := b.append(k, e, keyed); err != nil {
			return err
		}
	}
	b.preloaded = true
	return nil
}

// sourceKey resolves a source entry into its dedupe key. ok is false when
// the entry does not resolve cleanly; such entries are copied but excluded
// from deduplication.
func (b *Builder) sourceKey(src types.ConstantPool, index uint16, tag types.ConstantTag) (poolKey, bool) {
	switch tag {
	case types.TagUtf8:
		s, err := src.Utf8(index)
		return poolKey{tag: tag, s1: s.Key()}, err == nil
	case types.TagInteger:
		v, err := src.Integer(index)
		return poolKey{tag: tag, num: uint64(uint32(v))}, err == nil
	case types.TagFloat:
		v, err := src.Float(index)
		return poolKey{tag: tag, num: uint64(math.Float32bits(v))}, err == nil
	case types.TagLong:
		v, err := src.Long(index)
		return poolKey{tag: tag, num: uint64(v)}, err == nil
	case types.TagDouble:
		v, err := src.Double(index)
		return poolKey{tag: tag, num: math.Float64bits(v)}, err == nil
	case types.TagClass:
		s, err := src.ClassName(index)
		return poolKey{tag: tag, s1: s.Key()}, err == nil
	case types.TagString:
		s, err := src.String(index)
		return poolKey{tag: tag, s1: s.Key()}, err == nil
	case types.TagMethodType:
		s, err := src.MethodType(index)
		return poolKey{tag: tag, s1: s.Key()}, err == nil
	case types.TagModule:
		s, err := src.ModuleName(index)
		return poolKey{tag: tag, s1: s.Key()}, err == nil
	case types.TagPackage:
		s, err := src.PackageName(index)
		return poolKey{tag: tag, s1: s.Key()}, err == nil
	case types.TagFieldRef:
		ref, err := src.FieldRef(index)
		return poolKey{tag: tag, s1: ref.Owner.Key(), s2: ref.Name.Key(), s3: ref.Descriptor.Key()}, err == nil
	case types.TagMethodRef:
		ref, err := src.MethodRef(index)
		return poolKey{tag: tag, s1: ref.Owner.Key(), s2: ref.Name.Key(), s3: ref.Descriptor.Key()}, err == nil
	case types.TagInterfaceMethodRef:
		ref, err := src.InterfaceMethodRef(index)
		return poolKey{tag: tag, s1: ref.Owner.Key(), s2: ref.Name.Key(), s3: ref.Descriptor.Key()}, err == nil
	case types.TagNameAndType:
		nt, err := src.NameAndType(index)
		return poolKey{tag: tag, s1: nt.Name.Key(), s2: nt.Descriptor.Key()}, err == nil
	case types.TagMethodHandle:
		h, err := src.MethodHandle(index)
		return poolKey{
			tag: tag, kind: h.Kind, b: h.IsInterface,
			s1: h.Owner.Key(), s2: h.Name.Key(), s3: h.Descriptor.Key(),
		}, err == nil
	case types.TagDynamic:
		ref, err := src.Dynamic(index)
		return poolKey{tag: tag, num: uint64(ref.BootstrapIndex), s1: ref.Name.Key(), s2: ref.Descriptor.Key()}, err == nil
	case types.TagInvokeDynamic:
		ref, err := src.InvokeDynamic(index)
		return poolKey{tag: tag, num: uint64(ref.BootstrapIndex), s1: ref.Name.Key(), s2: ref.Descriptor.Key()}, err == nil
	}
	return poolKey{}, false
}

// freeze finalizes index assignment; further interning fails.
func (b *Builder) freeze() { b.frozen = true }

// appendPool emits the pool count and every entry.
func (b *Builder) appendPool(dst []byte) []byte {
	dst = binary.BigEndian.AppendUint16(dst, uint16(b.Count()))
	for _, e := range b.entries {
		if e.Tag == 0 {
			continue
		}
		dst = appendEntry(dst, e)
	}
	return dst
}

func appendEntry(dst []byte, e types.PoolEntry) []byte {
	dst = append(dst, byte(e.Tag))
	switch e.Tag {
	case types.TagUtf8:
		dst = binary.BigEndian.AppendUint16(dst, uint16(e.Utf8.Len()))
		dst = append(dst, e.Utf8.Raw()...)
	case types.TagInteger:
		dst = binary.BigEndian.AppendUint32(dst, uint32(e.Int))
	case types.TagFloat:
		dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(e.F32))
	case types.TagLong:
		dst = binary.BigEndian.AppendUint64(dst, uint64(e.Long))
	case types.TagDouble:
		dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(e.F64))
	case types.TagClass, types.TagString, types.TagMethodType, types.TagModule, types.TagPackage:
		dst = binary.BigEndian.AppendUint16(dst, e.Ref1)
	case types.TagMethodHandle:
		dst = append(dst, byte(e.Kind))
		dst = binary.BigEndian.AppendUint16(dst, e.Ref1)
	default:
		dst = binary.BigEndian.AppendUint16(dst, e.Ref1)
		dst = binary.BigEndian.AppendUint16(dst, e.Ref2)
	}
	return dst
}
