package llm

import (
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// ErrAborted signals cooperative cancellation of an in-flight generation.
// It is raised before any error classification so cancellation is never
// confused with failure.
var ErrAborted = errors.New("generation aborted")

// Code is the coarse-grained failure taxonomy surfaced to callers instead
// of raw provider errors.
type Code string

const (
	CodeInvalidCredential Code = "invalid_credential"
	CodeRateLimited       Code = "rate_limited"
	CodeOverloaded        Code = "overloaded"
	CodeNotFound          Code = "not_found"
	CodeSafety            Code = "safety"
	CodeUnknown           Code = "unknown"
)

// GenerationError is a provider failure normalized into the taxonomy.
type GenerationError struct {
	Code    Code
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return string(e.Code)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// classifyRule maps a predicate on the raw (status, message) pair to a
// taxonomy code. Rules are tried in order; first match wins.
type classifyRule struct {
	match func(status int, msg string) bool
	code  Code
}

var classifyRules = []classifyRule{
	{
		match: func(status int, msg string) bool {
			return status == 401 || status == 403 ||
				containsAny(msg, "API key", "API_KEY_INVALID", "401", "PERMISSION_DENIED")
		},
		code: CodeInvalidCredential,
	},
	{
		match: func(status int, msg string) bool {
			return status == 429 || containsAny(msg, "429", "QuotaExceeded", "RESOURCE_EXHAUSTED")
		},
		code: CodeRateLimited,
	},
	{
		match: func(status int, msg string) bool {
			return status == 503 || containsAny(msg, "503", "Overloaded", "UNAVAILABLE")
		},
		code: CodeOverloaded,
	},
	{
		match: func(status int, msg string) bool {
			return status == 404 || containsAny(msg, "404", "NOT_FOUND")
		},
		code: CodeNotFound,
	},
	{
		match: func(status int, msg string) bool {
			return containsAny(msg, "SAFETY", "blocked", "PROHIBITED_CONTENT")
		},
		code: CodeSafety,
	},
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ClassifyRaw maps a status code and message text to a taxonomy code.
func ClassifyRaw(status int, msg string) Code {
	for _, r := range classifyRules {
		if r.match(status, msg) {
			return r.code
		}
	}
	return CodeUnknown
}

// Classify normalizes a raw provider error into a GenerationError. Already
// normalized errors and cancellation pass through untouched.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAborted) {
		return ErrAborted
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}

	status := 0
	msg := err.Error()
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.Code
		if apiErr.Message != "" {
			msg = apiErr.Message
		}
	}

	return &GenerationError{
		Code:    ClassifyRaw(status, msg),
		Message: msg,
		Err:     err,
	}
}
