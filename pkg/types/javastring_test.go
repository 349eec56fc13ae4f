package types

import "testing"

func TestBytesOfNilIsEmptyNotAbsent(t *testing.T) {
	s := BytesOf(nil)
	if s.IsZero() {
		t.Fatalf("BytesOf(nil) is the absent value")
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d", s.Len())
	}
	if got, err := s.Decode(); err != nil || got != "" {
		t.Fatalf("Decode = %q, %v", got, err)
	}
	if !s.Equal(StringOf("")) {
		t.Fatalf("BytesOf(nil) != StringOf(\"\")")
	}
}

func TestZeroValueIsAbsent(t *testing.T) {
	var s JavaString
	if !s.IsZero() {
		t.Fatalf("zero value not absent")
	}
	if BytesOf([]byte{}).IsZero() {
		t.Fatalf("empty slice reported absent")
	}
}
