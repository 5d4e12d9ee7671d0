package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Assessor asks Gemini to compare a résumé with a job description and turns
// the reply into an ai.Assessment.
type Assessor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
	timeout   time.Duration
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

var _ ai.Assessor = (*Assessor)(nil)

func NewAssessor(generator contentGenerator, logger *zap.Logger, maxLogLength int, timeout time.Duration) *Assessor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assessor{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
		timeout:   timeout,
	}
}

// Assess issues a single model request. Any transport, parsing or validation
// problem yields an *ai.AssessmentError and no partial result.
func (a *Assessor) Assess(ctx context.Context, resumeText, jobDescription string) (*ai.Assessment, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, ai.Failure("resume text is empty", nil)
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, ai.Failure("job description is empty", nil)
	}

	prompt := buildPrompt(resumeText, jobDescription)

	// Résumé content stays out of the logs; only sizes are recorded.
	a.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.Int("resume_length", utf8.RuneCountInString(resumeText)),
		zap.Int("job_description_length", utf8.RuneCountInString(jobDescription)),
	)

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, ai.Failure("model request failed", err)
	}

	a.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		a.logger.Warn("gemini response rejected", zap.Error(err))
		return nil, err
	}

	return assessment, nil
}

func buildPrompt(resumeText, jobDescription string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume:\n{{RESUME_TEXT}}\n\nJob description:\n{{JOB_DESCRIPTION}}\n\nJSON Response:"
	}
	// A single pass keeps placeholder-like text inside the inputs untouched.
	return strings.NewReplacer(
		"{{RESUME_TEXT}}", resumeText,
		"{{JOB_DESCRIPTION}}", jobDescription,
	).Replace(template)
}

func parseResponse(raw string) (*ai.Assessment, error) {
	data, err := locateObject(raw)
	if err != nil {
		return nil, err
	}

	result, err := compiledSchema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, ai.Failure("validate response", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, ai.Failure("response does not match the expected shape: "+strings.Join(problems, "; "), nil)
	}

	score, err := coerceScore(data["match_score"])
	if err != nil {
		return nil, ai.Failure("match_score is not an integer", err)
	}

	summary, _ := data["profile_summary"].(string)

	return &ai.Assessment{
		MatchScore:     score,
		MissingSkills:  coerceStrings(data["missing_skills"]),
		ProfileSummary: strings.TrimSpace(summary),
		Improvements:   coerceStrings(data["improvements"]),
	}, nil
}

// locateObject returns the first JSON object embedded in raw. Markdown fences
// and prose around the object are ignored.
func locateObject(raw string) (map[string]any, error) {
	for offset := 0; offset < len(raw); {
		idx := strings.IndexByte(raw[offset:], '{')
		if idx < 0 {
			break
		}
		start := offset + idx

		decoder := json.NewDecoder(strings.NewReader(raw[start:]))
		decoder.UseNumber()

		var data map[string]any
		if err := decoder.Decode(&data); err == nil {
			return data, nil
		}

		offset = start + 1
	}

	return nil, ai.Failure("no JSON object found in response", nil)
}

func coerceScore(v any) (int, error) {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return 0, err
		}
		return truncate(f)
	case float64:
		return truncate(val)
	case string:
		return strconv.Atoi(strings.TrimSpace(val))
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func truncate(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("score is not finite")
	}
	return int(f), nil
}

func coerceStrings(v any) []string {
	items, _ := v.([]any)
	result := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return utils.NonEmpty(result)
}
