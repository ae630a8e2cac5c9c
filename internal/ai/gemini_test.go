package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestImageFormat(t *testing.T) {
	cases := map[string]string{
		"image/png":  "png",
		"IMAGE/PNG":  "png",
		"image/webp": "webp",
		"image/jpeg": "jpeg",
		"image/jpg":  "jpeg",
		"":           "jpeg",
	}
	for in, want := range cases {
		if got := imageFormat(in); got != want {
			t.Fatalf("imageFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func candidate(parts ...genai.Part) *genai.Candidate {
	return &genai.Candidate{Content: &genai.Content{Parts: parts}}
}

func TestResponseText(t *testing.T) {
	cases := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil response", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, ""},
		{
			"first candidate only",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				candidate(genai.Text("first")),
				candidate(genai.Text("second")),
			}},
			"first",
		},
		{
			"non-text parts skipped and trimmed",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				candidate(genai.Text("  Observations: "), genai.Blob{MIMEType: "image/png"}, genai.Text("dry patches\n")),
			}},
			"Observations: dry patches",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := responseText(tc.resp); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResultFromEmptyResponse(t *testing.T) {
	if _, err := resultFrom(&genai.GenerateContentResponse{}, DefaultModel); !errors.Is(err, errEmptyResponse) {
		t.Fatalf("expected empty response error, got %v", err)
	}
	res, err := resultFrom(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{candidate(genai.Text("ok"))}}, "gemini-test")
	if err != nil || res.Text != "ok" || res.Model != "gemini-test" {
		t.Fatalf("unexpected result %+v, %v", res, err)
	}
}

func TestBuildPartsWrapsPromptOnce(t *testing.T) {
	prompt := SkinPrompt(30, "female", "oily")
	parts := buildParts(Input{Prompt: prompt, Image: []byte{1, 2, 3}, MimeType: "image/png"})
	if len(parts) != 2 {
		t.Fatalf("expected image and text parts, got %d", len(parts))
	}
	blob, ok := parts[0].(genai.Blob)
	if !ok || blob.MIMEType != "image/png" {
		t.Fatalf("expected png image first, got %#v", parts[0])
	}
	text, ok := parts[1].(genai.Text)
	if !ok || string(text) != ModelPrompt(prompt) {
		t.Fatalf("unexpected text part %#v", parts[1])
	}
	if n := strings.Count(string(text), "You are a dermatology"); n != 1 {
		t.Fatalf("expected instructions once, got %d", n)
	}

	if parts := buildParts(Input{Prompt: prompt}); len(parts) != 1 {
		t.Fatalf("expected text only without image, got %d parts", len(parts))
	}
}

func TestGeminiAnalyzeSendsBuiltParts(t *testing.T) {
	var sent []genai.Part
	g := &GeminiAnalyzer{
		model: "gemini-test",
		generate: func(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
			sent = parts
			return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{candidate(genai.Text(" Looks healthy. "))}}, nil
		},
	}
	res, err := g.Analyze(context.Background(), Input{Prompt: HairPrompt(25, "male", "curly")})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Text != "Looks healthy." || res.Model != "gemini-test" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(sent) != 1 || string(sent[0].(genai.Text)) != ModelPrompt(HairPrompt(25, "male", "curly")) {
		t.Fatalf("unexpected parts sent: %#v", sent)
	}

	g.generate = func(context.Context, ...genai.Part) (*genai.GenerateContentResponse, error) {
		return nil, errors.New("quota exceeded")
	}
	if _, err := g.Analyze(context.Background(), Input{Prompt: "p"}); err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected wrapped generate error, got %v", err)
	}
}
