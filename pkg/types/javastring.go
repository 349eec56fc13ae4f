package types

import (
	"bytes"
	"fmt"

	"github.com/Earthcomputer/classfile/internal/mutf8"
)

// JavaString is a constant pool string: a borrowed slice of Modified UTF-8
// bytes with decode-on-demand semantics. The JVM format permits byte
// sequences with no Unicode meaning, so JavaString never coerces to text
// implicitly; equality and hashing are defined over the raw bytes and
// Decode is the explicit, fallible path to a Go string.
//
// The zero value is "absent" (see IsZero), distinct from the empty string.
type JavaString struct {
	raw []byte
}

// StringOf encodes a Go string into a JavaString.
func StringOf(s string) JavaString {
	return JavaString{raw: mutf8.Encode(s)}
}

// BytesOf wraps raw Modified UTF-8 bytes without copying or validating. A
// nil slice is treated as the empty string; the absent value is only ever
// the zero JavaString.
func BytesOf(b []byte) JavaString {
	if b == nil {
		b = []byte{}
	}
	return JavaString{raw: b}
}

// Raw returns the underlying bytes. Callers must not mutate them.
func (s JavaString) Raw() []byte { return s.raw }

// Len returns the encoded length in bytes.
func (s JavaString) Len() int { return len(s.raw) }

// IsZero reports whether this is the absent value (no string at all, e.g.
// the missing superclass of java/lang/Object).
func (s JavaString) IsZero() bool { return s.raw == nil }

// Decode converts the raw bytes to a Go string. It fails when the bytes are
// not well-formed Modified UTF-8; the original bytes remain available via
// Raw regardless.
func (s JavaString) Decode() (string, error) {
	return mutf8.Decode(s.raw)
}

// IsValid reports whether Decode would succeed.
func (s JavaString) IsValid() bool { return mutf8.Valid(s.raw) }

// Equal reports raw byte equality.
func (s JavaString) Equal(o JavaString) bool { return bytes.Equal(s.raw, o.raw) }

// Key returns the raw bytes as a Go string for use as a map key. This is an
// identity key, not decoded text.
func (s JavaString) Key() string { return string(s.raw) }

// String renders a display form for diagnostics: decoded text when valid,
// otherwise a hex dump of the raw bytes. Never feed the result back into
// encoding; use Raw or Decode.
func (s JavaString) String() string {
	if text, err := s.Decode(); err == nil {
		return text
	}
	return fmt.Sprintf("raw:%x", s.raw)
}
