package audio

import "testing"

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		max     int
		wantErr bool
	}{
		{"latin word", "run", 200, false},
		{"cyrillic", "ябълка", 200, false},
		{"japanese", "食べる", 200, false},
		{"empty", "", 200, true},
		{"whitespace", "   ", 200, true},
		{"digits only", "12345", 200, true},
		{"at limit", "abcde", 5, false},
		{"over limit", "abcdef", 5, true},
		{"no limit", "abcdef", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText(tt.text, tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateText(%q, %d) error = %v, wantErr %v", tt.text, tt.max, err, tt.wantErr)
			}
		})
	}
}

func TestPreprocessText(t *testing.T) {
	tests := map[string]string{
		" run ":          "run",
		"¡correr!":       "correr",
		"\"ice cream\"": "ice cream",
		"well-known":     "well-known",
	}
	for in, want := range tests {
		if got := preprocessText(in); got != want {
			t.Errorf("preprocessText(%q) = %q, want %q", in, got, want)
		}
	}
}
