package handler

import (
	"strings"
	"testing"
)

func TestValidator_StrongPassword(t *testing.T) {
	v := NewValidator()
	type req struct {
		Password string `json:"password" validate:"strongpassword"`
	}

	tests := []struct {
		password string
		ok       bool
	}{
		{"Str0ng!pass", true},
		{"Aa1!aaaa", true},
		{"Aa1!aaa", false},
		{"alllower1!", false},
		{"ALLUPPER1!", false},
		{"NoDigits!!", false},
		{"NoSymbol11", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := v.Validate(&req{Password: tt.password})
			if (err == nil) != tt.ok {
				t.Fatalf("Validate(%q) err = %v, want ok=%v", tt.password, err, tt.ok)
			}
		})
	}
}

func TestValidator_KeyName(t *testing.T) {
	v := NewValidator()

	valid := createAPIKeyRequest{Name: "CI deploy_bot-2"}
	if err := v.Validate(&valid); err != nil {
		t.Fatalf("expected valid name, got %v", err)
	}

	invalid := createAPIKeyRequest{Name: "bot<script>"}
	err := v.Validate(&invalid)
	if err == nil || !strings.Contains(err.Error(), "name may only contain") {
		t.Fatalf("expected keyname error, got %v", err)
	}
}

func TestValidator_UsesJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&changePasswordRequest{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "old_password is required") || !strings.Contains(msg, "new_password is required") {
		t.Fatalf("unexpected message: %s", msg)
	}
}
