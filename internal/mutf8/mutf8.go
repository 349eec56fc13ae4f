// Package mutf8 implements the JVM's Modified UTF-8 string encoding.
//
// Modified UTF-8 differs from standard UTF-8 in two ways: the NUL character
// is stored as the two-byte sequence 0xC0 0x80 (so encoded strings never
// contain a zero byte), and characters outside the Basic Multilingual Plane
// are stored as a CESU-8 style surrogate pair, two three-byte sequences
// totalling six bytes. Four-byte UTF-8 sequences never appear.
//
// The codec is exposed as a golang.org/x/text/encoding.Encoding so callers
// can compose it with transform pipelines, plus Decode/Encode helpers for
// the common whole-buffer case.
package mutf8

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// ErrInvalid reports input that is not well-formed Modified UTF-8, or that
// decodes to an unpaired surrogate and therefore has no Unicode meaning.
var ErrInvalid = errors.New("mutf8: invalid modified UTF-8")

// Encoding converts between Modified UTF-8 and standard UTF-8.
var Encoding encoding.Encoding = modifiedUTF8{}

type modifiedUTF8 struct{}

func (modifiedUTF8) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: &decoder{}}
}

func (modifiedUTF8) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: &encoder{}}
}

// Decode converts Modified UTF-8 bytes to a Go string. It fails with
// ErrInvalid when b contains a zero byte, a malformed or overlong sequence,
// a four-byte UTF-8 sequence, or an unpaired surrogate.
func Decode(b []byte) (string, error) {
	out, err := Encoding.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Encode converts a Go string to Modified UTF-8. The input must be valid
// UTF-8; invalid runes encode as U+FFFD the same way string iteration
// produces them.
func Encode(s string) []byte {
	// Worst case: every rune outside the BMP costs 6 bytes vs 4 in UTF-8.
	out := make([]byte, 0, len(s)+len(s)/2)
	for _, r := range s {
		out = appendRune(out, r)
	}
	return out
}

// Valid reports whether b is well-formed Modified UTF-8.
func Valid(b []byte) bool {
	_, err := Decode(b)
	return err == nil
}

func appendRune(dst []byte, r rune) []byte {
	switch {
	case r == 0:
		return append(dst, 0xC0, 0x80)
	case r < 0x80:
		return append(dst, byte(r))
	case r < 0x800:
		return append(dst, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
	case r < 0x10000:
		return append(dst, 0xE0|byte(r>>12), 0x80|byte(r>>6&0x3F), 0x80|byte(r&0x3F))
	default:
		hi, lo := utf16.EncodeRune(r)
		dst = appendRune(dst, hi)
		return appendRune(dst, lo)
	}
}

type decoder struct{}

func (*decoder) Reset() {}

func (*decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r, size, derr := decodeRune(src[nSrc:], atEOF)
		if derr != nil {
			return nDst, nSrc, derr
		}
		if nDst+utf8.RuneLen(r) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
		nSrc += size
	}
	return nDst, nSrc, nil
}

type encoder struct{}

func (*encoder) Reset() {}

func (*encoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size <= 1 {
			if !atEOF && !utf8.FullRune(src[nSrc:]) {
				return nDst, nSrc, transform.ErrShortSrc
			}
			r = utf8.RuneError
			if size == 0 {
				size = 1
			}
		}
		var enc [6]byte
		n := len(appendRune(enc[:0], r))
		if nDst+n > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], enc[:n])
		nSrc += size
	}
	return nDst, nSrc, nil
}

// decodeRune decodes one character, combining surrogate pairs. size is the
// number of source bytes consumed on success.
func decodeRune(src []byte, atEOF bool) (r rune, size int, err error) {
	b0 := src[0]
	switch {
	case b0 == 0 || b0 >= 0xF0:
		// Zero bytes and 4-byte sequences never appear in Modified UTF-8.
		return 0, 0, ErrInvalid
	case b0 < 0x80:
		return rune(b0), 1, nil
	case b0 < 0xC0:
		// Stray continuation byte.
		return 0, 0, ErrInvalid
	case b0 < 0xE0:
		if len(src) < 2 {
			if !atEOF {
				return 0, 0, transform.ErrShortSrc
			}
			return 0, 0, ErrInvalid
		}
		if !isCont(src[1]) {
			return 0, 0, ErrInvalid
		}
		r = rune(b0&0x1F)<<6 | rune(src[1]&0x3F)
		// The only permitted overlong form is 0xC0 0x80 for NUL.
		if r < 0x80 && r != 0 {
			return 0, 0, ErrInvalid
		}
		return r, 2, nil
	default:
		if len(src) < 3 {
			if !atEOF {
				return 0, 0, transform.ErrShortSrc
			}
			return 0, 0, ErrInvalid
		}
		if !isCont(src[1]) || !isCont(src[2]) {
			return 0, 0, ErrInvalid
		}
		r = rune(b0&0x0F)<<12 | rune(src[1]&0x3F)<<6 | rune(src[2]&0x3F)
		if r < 0x800 {
			return 0, 0, ErrInvalid
		}
		if !utf16.IsSurrogate(r) {
			return r, 3, nil
		}
		// High surrogate must be followed by an encoded low surrogate.
		if len(src) < 6 {
			if !atEOF {
				return 0, 0, transform.ErrShortSrc
			}
			return 0, 0, ErrInvalid
		}
		if src[3] < 0xE0 || src[3] >= 0xF0 || !isCont(src[4]) || !isCont(src[5]) {
			return 0, 0, ErrInvalid
		}
		lo := rune(src[3]&0x0F)<<12 | rune(src[4]&0x3F)<<6 | rune(src[5]&0x3F)
		full := utf16.DecodeRune(r, lo)
		if full == utf8.RuneError {
			return 0, 0, ErrInvalid
		}
		return full, 6, nil
	}
}

func isCont(b byte) bool { return b&0xC0 == 0x80 }
