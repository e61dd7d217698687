package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyRaw(t *testing.T) {
	tests := []struct {
		name   string
		status int
		msg    string
		want   Code
	}{
		{"status 401", 401, "unauthorized", CodeInvalidCredential},
		{"status 403", 403, "forbidden", CodeInvalidCredential},
		{"api key text", 0, "API key not valid. Please pass a valid API key.", CodeInvalidCredential},
		{"api key invalid status", 0, "[400] API_KEY_INVALID", CodeInvalidCredential},
		{"status 429", 429, "too many requests", CodeRateLimited},
		{"resource exhausted", 0, "RESOURCE_EXHAUSTED: quota metric exceeded", CodeRateLimited},
		{"quota text", 0, "QuotaExceeded for project", CodeRateLimited},
		{"status 503", 503, "service unavailable", CodeOverloaded},
		{"overloaded text", 0, "The model is Overloaded, try again later", CodeOverloaded},
		{"unavailable text", 0, "UNAVAILABLE: try again", CodeOverloaded},
		{"status 404", 404, "no such model", CodeNotFound},
		{"not found text", 0, "NOT_FOUND: models/nope", CodeNotFound},
		{"safety text", 0, "candidate blocked due to SAFETY", CodeSafety},
		{"blocked text", 0, "request blocked by content policy", CodeSafety},
		{"unknown", 500, "internal error", CodeUnknown},
		{"empty", 0, "", CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRaw(tt.status, tt.msg))
		})
	}
}

func TestClassifyRuleOrdering(t *testing.T) {
	// A 401 mentioning quota still classifies as a credential problem:
	// rules are tried in order and first match wins.
	assert.Equal(t, CodeInvalidCredential, ClassifyRaw(401, "QuotaExceeded"))
}

func TestClassifyWrapsRawError(t *testing.T) {
	raw := errors.New("got status 429: slow down")
	err := Classify(raw)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, CodeRateLimited, genErr.Code)
	assert.ErrorIs(t, err, raw)
}

func TestClassifyNeverConfusesCancellation(t *testing.T) {
	assert.Equal(t, ErrAborted, Classify(ErrAborted))
	assert.Equal(t, ErrAborted, Classify(fmt.Errorf("stream: %w", ErrAborted)))
}

func TestClassifyPassesThroughNormalized(t *testing.T) {
	orig := &GenerationError{Code: CodeSafety, Message: "blocked"}
	err := Classify(fmt.Errorf("outer: %w", orig))

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, CodeSafety, genErr.Code)
}

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, Classify(nil))
}

func TestIsTrivialEditPrompt(t *testing.T) {
	assert.True(t, isTrivialEditPrompt(""))
	assert.True(t, isTrivialEditPrompt("fix"))
	assert.True(t, isTrivialEditPrompt("EDIT"))
	assert.True(t, isTrivialEditPrompt("improve"))
	assert.False(t, isTrivialEditPrompt("make it cartoon style"))
}

func TestGenerationErrorString(t *testing.T) {
	err := &GenerationError{Code: CodeNotFound, Message: "models/nope"}
	assert.Equal(t, "not_found: models/nope", err.Error())
	assert.Equal(t, "overloaded", (&GenerationError{Code: CodeOverloaded}).Error())
}
