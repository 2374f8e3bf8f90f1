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
		{"slug", "dungeon-tavern", false},
		{"preview id", "city-scape-preview", false},
		{"underscore and dot", "v1.2_notes", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"space", "two words", true},
		{"newline", "foo\nbar", true},
		{"slash", "games/board", true},
		{"traversal", "..", true},
		{"backslash", "foo\\bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidNodeID) {
				t.Errorf("ValidateNodeID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidNodeID)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple file", "about.mdoc", false},
		{"nested", "nodes/about.mdoc", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "nodes/../../secret", true},
		{"backslash", "nodes\\about.mdoc", true},
		{"null byte", "about\x00.mdoc", true},
		{"too long", strings.Repeat("a/", 300), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://stonecallstudio.com/JSTests/City_Scape/index.html", false},
		{"http://x", false},
		{"", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
	}

	for _, tt := range tests {
		err := ValidateURL(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
