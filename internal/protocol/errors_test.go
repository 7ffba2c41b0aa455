package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	for _, code := range []string{
		ErrProtoBadRequest, ErrBadRequest, ErrTaskNotFound,
		ErrNoResource, ErrOutOfBounds, ErrBlocked, ErrBudget, ErrInternal,
	} {
		if !IsKnownCode(code) {
			t.Fatalf("%s not recognized", code)
		}
	}
	if IsKnownCode("E_MADE_UP") {
		t.Fatal("unknown code accepted")
	}
	// Absent codes (events without a failure) are fine.
	if !IsKnownCode("") {
		t.Fatal("empty code rejected")
	}
}
