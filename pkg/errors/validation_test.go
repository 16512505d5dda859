package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"symptom", "S_fever", false},
		{"disease", "D_influenza", false},
		{"no prefix", "orphan", false},
		{"unicode", "S_céphalée", false},

		{"empty", "", true},
		{"too long", "S_" + strings.Repeat("x", 300), true},
		{"space", "S_chest pain", true},
		{"tab", "S_a\tb", true},
		{"null byte", "S_\x00", true},
		{"newline", "S_a\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidNodeID) {
				t.Errorf("ValidateNodeID(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestSafeFilename(t *testing.T) {
	tests := map[string]string{
		"S_fever":       "S_fever",
		"D_a/b":         "D_a_b",
		"M_x y":         "M_x_y",
		"..":            "node",
		"S_hépatite":    "S_h_patite",
		".hidden.node.": "hidden.node",
	}
	for in, want := range tests {
		if got := SafeFilename(in); got != want {
			t.Errorf("SafeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidParameter,
		ErrCodeInvalidNodeID,
		ErrCodeInvalidFormat,
		ErrCodeInvalidStyle,
		ErrCodeInvalidConfig,
		ErrCodeInvalidRecord,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
