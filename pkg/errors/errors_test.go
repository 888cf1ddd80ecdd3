package errors

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeNetwork, cause, "failed to fetch")

	if err.Code != ErrCodeNetwork {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNetwork)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeNetwork,
			expected: false,
		},
		{
			name:     "manifest not found",
			err:      NewManifestNotFound("requirements.txt"),
			code:     ErrCodeManifestNotFound,
			expected: true,
		},
		{
			name:     "wrapped not parseable",
			err:      fmt.Errorf("discover: %w", NewManifestNotParseable("Pipfile", errors.New("bad toml"))),
			code:     ErrCodeManifestNotParseable,
			expected: true,
		},
		{
			name:     "unreachable",
			err:      NewPathDependenciesUnreachable([]string{"pkg/setup.py"}),
			code:     ErrCodePathDependenciesUnreachable,
			expected: true,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"structured", New(ErrCodeTimeout, "slow"), ErrCodeTimeout},
		{"not found", fmt.Errorf("x: %w", NewManifestNotFound("requirements.txt")), ErrCodeManifestNotFound},
		{"rate limited", &RateLimitedError{RetryAfter: 3}, ErrCodeRateLimited},
		{"plain", errors.New("plain"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"structured", New(ErrCodeInvalidInput, "bad input"), "bad input"},
		{"manifest not found", NewManifestNotFound("backend/requirements.txt"), "backend/requirements.txt not found"},
		{"unreachable", NewPathDependenciesUnreachable([]string{"a/setup.py", "b/setup.py"}), "a/setup.py, b/setup.py"},
		{"plain", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewPathDependenciesUnreachable_StripsLeadingSlash(t *testing.T) {
	err := NewPathDependenciesUnreachable([]string{"/local_pkg/setup.py", "other/setup.py"})

	want := []string{"local_pkg/setup.py", "other/setup.py"}
	if !reflect.DeepEqual(err.Paths, want) {
		t.Errorf("Paths = %v, want %v", err.Paths, want)
	}

	var target *PathDependenciesUnreachableError
	if !errors.As(fmt.Errorf("wrap: %w", err), &target) {
		t.Fatal("errors.As should find PathDependenciesUnreachableError")
	}
	if target.Code() != ErrCodePathDependenciesUnreachable {
		t.Errorf("Code() = %v, want %v", target.Code(), ErrCodePathDependenciesUnreachable)
	}
}

func TestManifestNotParseable_Unwrap(t *testing.T) {
	cause := errors.New("toml: line 3: expected '='")
	err := NewManifestNotParseable("pyproject.toml", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	want := "MANIFEST_NOT_PARSEABLE: pyproject.toml: toml: line 3: expected '='"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestRateLimitedError(t *testing.T) {
	tests := []struct {
		retryAfter int
		want       string
	}{
		{0, "rate limited"},
		{30, "rate limited: retry after 30 seconds"},
	}

	for _, tt := range tests {
		err := &RateLimitedError{RetryAfter: tt.retryAfter}
		if got := err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
