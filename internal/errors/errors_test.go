package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      stderrors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "validation error",
			err:      Invalid("email", ErrInvalidEmailFormat),
			expected: "Error: please enter a valid email",
		},
		{
			name:     "wrapped error",
			err:      fmt.Errorf("sign up: %w", ErrDuplicateEmail),
			expected: "Error: sign up: email already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.expected {
				t.Errorf("Format() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("habit %q not found", "Read")
	want := `Error: habit "Read" not found`
	if got != want {
		t.Errorf("Formatf() = %q, want %q", got, want)
	}
}

func TestValidationError(t *testing.T) {
	err := Invalidf("password", ErrPasswordTooShort, "password has %d characters", 3)

	if !stderrors.Is(err, ErrPasswordTooShort) {
		t.Error("expected validation error to unwrap to its sentinel")
	}
	if err.Error() != "password has 3 characters" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	wrapped := fmt.Errorf("sign up: %w", err)
	if got := FieldOf(wrapped); got != "password" {
		t.Errorf("FieldOf() = %q, want %q", got, "password")
	}
	if got := FieldOf(stderrors.New("plain")); got != "" {
		t.Errorf("FieldOf() on plain error = %q, want empty", got)
	}
}
