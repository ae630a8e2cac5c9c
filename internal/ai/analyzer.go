// Package ai produces skin and hair assessments from a photo and a prompt.
package ai

import (
	"context"
	"errors"
)

// DefaultModel is the model every stored analysis is labelled with.
const DefaultModel = "gemini-1.5-flash"

// ErrNotConfigured is returned when no model provider is configured.
var ErrNotConfigured = errors.New("ai analyzer not configured")

// Input is a single assessment request.
type Input struct {
	Prompt   string
	Image    []byte
	MimeType string
}

// Result is the model's answer.
type Result struct {
	Text  string
	Model string
}

// Analyzer abstracts the vision model.
type Analyzer interface {
	Analyze(ctx context.Context, in Input) (Result, error)
}

// Placeholder is used when no API key is configured.
type Placeholder struct{}

// Analyze returns ErrNotConfigured.
func (Placeholder) Analyze(context.Context, Input) (Result, error) {
	return Result{}, ErrNotConfigured
}
