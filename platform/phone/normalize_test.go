package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ten digit local number", "9876543210", "+919876543210"},
		{"already e164", "+919876543210", "+919876543210"},
		{"with country prefix no plus", "919876543210", "+919876543210"},
		{"spaces and dashes", " 98765-43210 ", "+919876543210"},
		{"foreign number with plus", "+14155552671", "+14155552671"},
		{"garbage returns trimmed input", " not-a-number ", "not-a-number"},
		{"empty", "", ""},
		{"too short returns trimmed input", "12345", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeE164(tt.input); got != tt.want {
				t.Errorf("NormalizeE164(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsDialable(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"9876543210", true},
		{"+919876543210", true},
		{"", false},
		{"   ", false},
		{"12345", false},
		{"not-a-number", false},
	}

	for _, tt := range tests {
		if got := IsDialable(tt.input); got != tt.want {
			t.Errorf("IsDialable(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
