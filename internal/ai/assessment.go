package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	MinScore = 0
	MaxScore = 100
)

// Assessment is the structured verdict on how well a résumé fits a job description.
type Assessment struct {
	MatchScore     int      `json:"match_score"`
	MissingSkills  []string `json:"missing_skills"`
	ProfileSummary string   `json:"profile_summary"`
	Improvements   []string `json:"improvements"`
}

// Assessor produces an Assessment for the given résumé text and job description.
// Implementations return either a complete Assessment or an error that matches
// ErrAssessment.
type Assessor interface {
	Assess(ctx context.Context, resumeText, jobDescription string) (*Assessment, error)
}

// ErrAssessment matches every failure to obtain a usable Assessment.
var ErrAssessment = errors.New("assessment failed")

// AssessmentError carries the reason an assessment could not be produced.
type AssessmentError struct {
	Reason string
	Err    error
}

func (e *AssessmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrAssessment, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrAssessment, e.Reason)
}

func (e *AssessmentError) Unwrap() error {
	return e.Err
}

func (e *AssessmentError) Is(target error) bool {
	return target == ErrAssessment
}

// Failure builds an AssessmentError.
func Failure(reason string, err error) error {
	return &AssessmentError{Reason: reason, Err: err}
}

// ClampScore bounds a score to the valid 0..100 range.
func ClampScore(score int) int {
	return min(max(score, MinScore), MaxScore)
}

// Encode serialises the assessment for storage. Nil lists are stored as empty
// arrays.
func Encode(a *Assessment) ([]byte, error) {
	if a == nil {
		return nil, errors.New("assessment is nil")
	}
	out := *a
	if out.MissingSkills == nil {
		out.MissingSkills = []string{}
	}
	if out.Improvements == nil {
		out.Improvements = []string{}
	}
	return json.Marshal(out)
}

// Decode restores an assessment stored by Encode.
func Decode(payload []byte) (*Assessment, error) {
	var a Assessment
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("decode assessment: %w", err)
	}
	return &a, nil
}
