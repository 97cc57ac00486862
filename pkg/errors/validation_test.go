package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"Valid", "node-1", false},
		{"ValidUnicode", "pakket·α", false},
		{"Empty", "", true},
		{"ControlChar", "a\x01b", true},
		{"NullByte", "a\x00b", true},
		{"TooLong", strings.Repeat("x", 257), true},
		{"MaxLength", strings.Repeat("x", 256), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != ErrCodeInvalidGraph {
				t.Errorf("code = %q, want %q", GetCode(err), ErrCodeInvalidGraph)
			}
		})
	}
}

func TestValidateOrdering(t *testing.T) {
	tests := []struct {
		ordering string
		wantErr  bool
	}{
		{"", false},
		{"degree", false},
		{"topology", false},
		{"topology-directed", false},
		{"degre", true},
		{"TOPOLOGY", true},
	}

	for _, tt := range tests {
		t.Run("Ordering_"+tt.ordering, func(t *testing.T) {
			err := ValidateOrdering(tt.ordering)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOrdering(%q) error = %v, wantErr %v", tt.ordering, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAlgorithm(t *testing.T) {
	for _, name := range []string{"force", "circular", "dot"} {
		if err := ValidateAlgorithm(name); err != nil {
			t.Errorf("ValidateAlgorithm(%q) = %v, want nil", name, err)
		}
	}
	if err := ValidateAlgorithm("tower"); err == nil {
		t.Error("ValidateAlgorithm(tower) = nil, want error")
	} else if GetCode(err) != ErrCodeInvalidAlgorithm {
		t.Errorf("code = %q, want %q", GetCode(err), ErrCodeInvalidAlgorithm)
	}
}

func TestValidateGraphPath(t *testing.T) {
	if err := ValidateGraphPath("graphs/web.json"); err != nil {
		t.Errorf("valid path rejected: %v", err)
	}
	if err := ValidateGraphPath(""); err == nil {
		t.Error("empty path accepted")
	}
	if err := ValidateGraphPath("a\x00b"); err == nil {
		t.Error("null byte accepted")
	}
	if err := ValidateGraphPath(strings.Repeat("p/", 300)); err == nil {
		t.Error("overlong path accepted")
	}
}
