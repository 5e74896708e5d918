package summary

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestClassifyAPIError(t *testing.T) {
	e := NewOpenAIExtractorWithClient(nil, DefaultOpenAIConfig())

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "unauthorized",
			err:  &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "invalid api key"},
			want: ErrAuthFailed,
		},
		{
			name: "forbidden",
			err:  &openai.APIError{HTTPStatusCode: http.StatusForbidden, Message: "no access"},
			want: ErrAuthFailed,
		},
		{
			name: "rate limited",
			err:  &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"},
			want: ErrRequestFailed,
		},
		{
			name: "transport failure",
			err:  errors.New("dial tcp: connection refused"),
			want: ErrRequestFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, e.classifyAPIError("ExtractFields", tt.err), tt.want)
		})
	}
}

func TestBuildPromptTruncatesLongText(t *testing.T) {
	e := NewOpenAIExtractorWithClient(nil, OpenAIConfig{Model: "gpt-4o", MaxPromptLen: 100})

	long := strings.Repeat("x", 5000)
	prompt := e.buildPrompt(long)

	assert.Contains(t, prompt, strings.Repeat("x", 100))
	assert.NotContains(t, prompt, strings.Repeat("x", 101))
	assert.Contains(t, prompt, "invoice_number", "field contract must survive truncation")
}

func TestNewOpenAIExtractorRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIExtractor("", DefaultOpenAIConfig())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
