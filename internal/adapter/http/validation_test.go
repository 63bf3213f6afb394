package http

import "testing"

type addrPayload struct {
	Address string `validate:"required,ethaddr"`
}

type idPayload struct {
	LoanID string `validate:"required,hex32"`
}

func TestValidator_EthAddr(t *testing.T) {
	cv := NewValidator()
	if err := cv.Validate(&addrPayload{Address: "0x00000000000000000000000000000000000000aa"}); err != nil {
		t.Fatalf("valid address rejected: %v", err)
	}
	for _, bad := range []string{"", "0x123", "00000000000000000000000000000000000000aa",
		"0x0000000000000000000000000000000000000zzz"} {
		if err := cv.Validate(&addrPayload{Address: bad}); err == nil {
			t.Errorf("address %q accepted", bad)
		}
	}
}

func TestValidator_Hex32(t *testing.T) {
	cv := NewValidator()
	if err := cv.Validate(&idPayload{LoanID: "0123456789abcdef0123456789abcdef"}); err != nil {
		t.Fatalf("valid id rejected: %v", err)
	}
	if err := cv.Validate(&idPayload{LoanID: "XYZ"}); err == nil {
		t.Fatal("invalid id accepted")
	}
}

func TestToFieldErrors(t *testing.T) {
	cv := NewValidator()
	err := cv.Validate(&addrPayload{Address: "nope"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	fields := ToFieldErrors(err)
	if !containsFieldMsg(fields, "Address", "hex address") {
		t.Fatalf("unexpected field errors: %+v", fields)
	}
}
