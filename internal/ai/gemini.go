package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var errEmptyResponse = errors.New("gemini generate: empty response")

// GeminiAnalyzer calls the Gemini API with the photo and prompt.
type GeminiAnalyzer struct {
	client   *genai.Client
	model    string
	generate func(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// NewGeminiAnalyzer connects to Gemini with apiKey. Close releases the client.
func NewGeminiAnalyzer(ctx context.Context, apiKey, model string) (*GeminiAnalyzer, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiAnalyzer{
		client:   client,
		model:    model,
		generate: client.GenerativeModel(model).GenerateContent,
	}, nil
}

// Analyze sends the image and the instruction-wrapped prompt and concatenates
// the text parts of the reply. in.Prompt is the raw request line.
func (g *GeminiAnalyzer) Analyze(ctx context.Context, in Input) (Result, error) {
	resp, err := g.generate(ctx, buildParts(in)...)
	if err != nil {
		return Result{}, fmt.Errorf("gemini generate: %w", err)
	}
	return resultFrom(resp, g.model)
}

// Close releases the underlying client.
func (g *GeminiAnalyzer) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// buildParts puts the image first, then the prompt wrapped once in the instructions.
func buildParts(in Input) []genai.Part {
	parts := make([]genai.Part, 0, 2)
	if len(in.Image) > 0 {
		parts = append(parts, genai.ImageData(imageFormat(in.MimeType), in.Image))
	}
	return append(parts, genai.Text(ModelPrompt(in.Prompt)))
}

func resultFrom(resp *genai.GenerateContentResponse, model string) (Result, error) {
	text := responseText(resp)
	if text == "" {
		return Result{}, errEmptyResponse
	}
	return Result{Text: text, Model: model}, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				b.WriteString(string(txt))
			}
		}
		// First candidate only.
		break
	}
	return strings.TrimSpace(b.String())
}

func imageFormat(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	default:
		return "jpeg"
	}
}
