package pii

import (
	"testing"
)

func TestRedactor_Scrub(t *testing.T) {
	redactor := NewRedactor(true)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Email Address",
			input:    "contact me at test@example.com please",
			expected: "contact me at [REDACTED] please",
		},
		{
			name:     "Phone Number",
			input:    "call +1 (555) 123-4567 now",
			expected: "call [REDACTED] now",
		},
		{
			name:     "IP Address",
			input:    "my server is 192.168.1.10 ok",
			expected: "my server is [REDACTED] ok",
		},
		{
			name:     "Multiple Hits",
			input:    "a@b.io and 10.0.0.1",
			expected: "[REDACTED] and [REDACTED]",
		},
		{
			name:     "Clean Content Unchanged",
			input:    "hello world, nothing to see",
			expected: "hello world, nothing to see",
		},
		{
			name:     "Empty Content",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactor.Scrub(tt.input); got != tt.expected {
				t.Errorf("Scrub() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRedactor_Disabled(t *testing.T) {
	redactor := NewRedactor(false)
	input := "reach me at test@example.com"
	if got := redactor.Scrub(input); got != input {
		t.Errorf("disabled redactor must pass content through, got %q", got)
	}
}
