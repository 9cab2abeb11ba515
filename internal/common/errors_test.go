package common

import (
	"errors"
	"testing"
)

func TestUserError(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		wrapped error
		name    string
		message string
		want    string
	}{
		{
			name:    "message only",
			message: "provide a transaction id",
			wrapped: nil,
			want:    "provide a transaction id",
		},
		{
			name:    "message with cause",
			message: "failed to open database",
			wrapped: cause,
			want:    "failed to open database: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewUserError(tt.message, tt.wrapped)
			if got := err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserError_UnwrapsThroughErrorsAs(t *testing.T) {
	err := NewUserError("failed to load transaction", ErrNotFound)

	var userErr *UserError
	if !errors.As(err, &userErr) {
		t.Fatal("errors.As should recover the UserError")
	}
	if userErr.UserMessage != "failed to load transaction" {
		t.Errorf("UserMessage = %q", userErr.UserMessage)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("wrapped sentinel should survive errors.Is")
	}
}
