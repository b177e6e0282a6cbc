package domain

import (
	"errors"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "error without wrapped error",
			appErr:   ErrMissingFile,
			expected: "No file provided",
		},
		{
			name: "error with wrapped error",
			appErr: &AppError{
				Code:       "TEST_ERROR",
				Message:    "Test message",
				StatusCode: 500,
				Err:        errors.New("underlying error"),
			},
			expected: "Test message: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	appErr := &AppError{
		Code:       "TEST",
		Message:    "test",
		StatusCode: 500,
		Err:        underlying,
	}

	if got := appErr.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}

	// Test with nil error
	if got := ErrDecodeFailed.Unwrap(); got != nil {
		t.Errorf("Unwrap() = %v, want nil", got)
	}
}

func TestAppError_WithError(t *testing.T) {
	underlying := errors.New("truncated jpeg")
	newErr := ErrDecodeFailed.WithError(underlying)

	if newErr.Code != ErrDecodeFailed.Code {
		t.Errorf("Code = %v, want %v", newErr.Code, ErrDecodeFailed.Code)
	}

	if newErr.StatusCode != ErrDecodeFailed.StatusCode {
		t.Errorf("StatusCode = %v, want %v", newErr.StatusCode, ErrDecodeFailed.StatusCode)
	}

	if !errors.Is(newErr, underlying) {
		t.Error("wrapped error should match errors.Is")
	}

	// The predefined error must not be mutated
	if ErrDecodeFailed.Err != nil {
		t.Error("WithError must not mutate the predefined error")
	}
}
