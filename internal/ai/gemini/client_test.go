package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type stubModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	prompt string
}

func (s *stubModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.model = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		s.prompt = contents[0].Parts[0].Text
	}
	return s.resp, s.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: genai.RoleModel}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}, nil}}
}

func TestGeneratorJoinsParts(t *testing.T) {
	models := &stubModels{resp: textResponse(" {\"match_score\": ", "", "73} ")}
	gen := newGenerator(models, "")

	out, err := gen.GenerateContent(context.Background(), "  prompt  ")
	require.NoError(t, err)

	assert.Equal(t, "{\"match_score\":\n73}", out)
	assert.Equal(t, defaultModel, models.model)
	assert.Equal(t, "prompt", models.prompt)
	assert.Equal(t, defaultModel, gen.Model())
}

func TestGeneratorErrors(t *testing.T) {
	_, err := newGenerator(&stubModels{resp: textResponse("ok")}, "m").GenerateContent(context.Background(), " ")
	assert.Error(t, err)

	_, err = newGenerator(&stubModels{resp: textResponse("   ")}, "m").GenerateContent(context.Background(), "p")
	assert.EqualError(t, err, "gemini api returned empty response")

	cause := errors.New("permission denied")
	_, err = newGenerator(&stubModels{err: cause}, "m").GenerateContent(context.Background(), "p")
	assert.ErrorIs(t, err, cause)

	var nilGen *Generator
	_, err = nilGen.GenerateContent(context.Background(), "p")
	assert.Error(t, err)
	assert.Empty(t, nilGen.Model())
}

func TestGeneratorPing(t *testing.T) {
	models := &stubModels{resp: textResponse("Hello")}
	require.NoError(t, newGenerator(models, "gemini-2.5-flash").Ping(context.Background()))
	assert.Equal(t, pingPrompt, models.prompt)
	assert.Equal(t, "gemini-2.5-flash", models.model)

	assert.Error(t, newGenerator(&stubModels{err: errors.New("invalid key")}, "m").Ping(context.Background()))
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), "  ", "m")
	assert.Error(t, err)
}
