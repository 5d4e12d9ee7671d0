package app

import (
	"errors"
	"fmt"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/extract"
	"github.com/spigell/resume-matcher/internal/session"
	"github.com/spigell/resume-matcher/internal/store"
)

// ErrValidation matches every input rejected before any work is done.
var ErrValidation = errors.New("validation failed")

// ValidationError names the offending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Describe turns an error returned by the Service into a message for the user.
func Describe(err error) string {
	var (
		ve *ValidationError
		ae *ai.AssessmentError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, extract.ErrExtraction):
		return "Could not read any text from the uploaded PDF. Please upload a different file."
	case errors.As(err, &ae):
		return fmt.Sprintf("The analysis could not be completed (%s). Please check your API key and try again.", ae.Reason)
	case errors.Is(err, ai.ErrAssessment):
		return "The analysis could not be completed. Please try again."
	case errors.Is(err, store.ErrUsernameTaken):
		return "Username already exists."
	case errors.Is(err, store.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, store.ErrNotFound):
		return "Record not found."
	case errors.Is(err, session.ErrAnalysisInFlight):
		return "An analysis is already running."
	case errors.Is(err, store.ErrStore):
		return "Could not access saved data. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
