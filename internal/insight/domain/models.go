package domain

import (
	"context"
	"errors"
)

// NotConfiguredMessage is returned verbatim when no generator is available.
const NotConfiguredMessage = "Gemini not configured — showing suggestions."

var (
	ErrNotConfigured   = errors.New("insight_not_configured")
	ErrEmptyCompletion = errors.New("empty completion")
)

// Generator turns a prompt into a single text completion.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is the requester's outcome. Text holds the completion on success
// and a short explanation otherwise.
type Result struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
}
