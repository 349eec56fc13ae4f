package types

import (
	"fmt"
)

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindEOF        ErrKind = iota // read past the end of the buffer
	ErrKindIndex                     // pool index out of range, or zero where non-zero required
	ErrKindWrongKind                 // pool entry has a different tag than requested
	ErrKindConstant                  // unknown tag byte or invalid fixed-size payload
	ErrKindAttribute                 // attribute length mismatch or truncated nested structure
	ErrKindOverflow                  // writer exceeded 65535 usable pool slots
	ErrKindUnresolved                // writer finalized with an unresolvable reference
	ErrKindVersion                   // class file version newer than the library knows
	ErrKindFormat                    // bad magic or gross layout violation
	ErrKindState                     // invalid operation for the current state
)

// Error is a typed error with a byte offset (read side) and an optional
// underlying cause. Off is -1 when no position applies.
type Error struct {
	Kind ErrKind
	Msg  string
	Off  int
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if e.Off >= 0 {
		msg = fmt.Sprintf("%s (offset %d)", msg, e.Off)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so
// errors.Is(err, types.ErrUnexpectedEOF) works on positioned errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels commonly returned by implementations. Match with errors.Is.
var (
	// ErrUnexpectedEOF indicates the cursor ran past the buffer end.
	ErrUnexpectedEOF = &Error{Kind: ErrKindEOF, Msg: "unexpected end of class file", Off: -1}
	// ErrInvalidIndex indicates a constant pool index out of range or zero.
	ErrInvalidIndex = &Error{Kind: ErrKindIndex, Msg: "invalid constant pool index", Off: -1}
	// ErrWrongConstantKind indicates an entry of an unexpected constant kind.
	ErrWrongConstantKind = &Error{Kind: ErrKindWrongKind, Msg: "wrong constant kind", Off: -1}
	// ErrMalformedConstant indicates an unknown tag or invalid constant payload.
	ErrMalformedConstant = &Error{Kind: ErrKindConstant, Msg: "malformed constant", Off: -1}
	// ErrMalformedAttribute indicates a length mismatch or truncated attribute.
	ErrMalformedAttribute = &Error{Kind: ErrKindAttribute, Msg: "malformed attribute", Off: -1}
	// ErrPoolOverflow indicates the writer exceeded 65535 usable pool slots.
	ErrPoolOverflow = &Error{Kind: ErrKindOverflow, Msg: "constant pool overflow", Off: -1}
	// ErrUnresolvedReference indicates the writer could not resolve a reference
	// supplied by an event into a pool or bootstrap method index.
	ErrUnresolvedReference = &Error{Kind: ErrKindUnresolved, Msg: "unresolved reference", Off: -1}
	// ErrUnsupportedVersion indicates a class file version newer than supported.
	ErrUnsupportedVersion = &Error{Kind: ErrKindVersion, Msg: "unsupported class file version", Off: -1}
	// ErrBadMagic indicates the buffer does not start with 0xCAFEBABE.
	ErrBadMagic = &Error{Kind: ErrKindFormat, Msg: "bad magic number", Off: -1}
	// ErrFinished indicates use of a writer after Finish.
	ErrFinished = &Error{Kind: ErrKindState, Msg: "writer already finished", Off: -1}
)

// Errorf builds a positioned error of the given kind. Pass off = -1 when no
// byte offset applies.
func Errorf(kind ErrKind, off int, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Off: off}
}
