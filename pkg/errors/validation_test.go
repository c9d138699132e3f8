package errors

import (
	"strings"
	"testing"
)

func TestValidateItemID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple", "iron-plate", false},
		{"underscore", "petroleum_gas", false},
		{"namespaced", "mod:steel-chest", false},
		{"dotted", "item.v2", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", maxItemIDLength+1), true},
		{"control char", "iron\nplate", true},
		{"traversal", "../etc/passwd", true},
		{"slash", "a/b", true},
		{"space", "iron plate", true},
		{"leading dash", "-iron", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItemID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateItemID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidItemID) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidItemID)
			}
		})
	}
}

func TestValidateDatabasePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantCode Code
	}{
		{"json", "recipes.json", ""},
		{"toml", "data/recipes.toml", ""},
		{"yaml", "/abs/recipes.yaml", ""},
		{"yml upper", "RECIPES.YML", ""},
		{"empty", "", ErrCodeInvalidInput},
		{"null byte", "a\x00.json", ErrCodeInvalidInput},
		{"no extension", "recipes", ErrCodeInvalidFormat},
		{"csv", "recipes.csv", ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabasePath(tt.path)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("ValidateDatabasePath(%q) = %v, want nil", tt.path, err)
				}
				return
			}
			if !Is(err, tt.wantCode) {
				t.Errorf("ValidateDatabasePath(%q) = %v, want code %v", tt.path, err, tt.wantCode)
			}
		})
	}
}
