package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrTransport    = errors.New("transport failure")
	ErrServer       = errors.New("server error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTemporary    = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// ValidationError names the rejected input and why. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Phase names the saga stage a run failed in.
type Phase string

const (
	PhaseExtractionFailed         Phase = "ExtractionFailed"
	PhaseAnalysisResolutionFailed Phase = "AnalysisResolutionFailed"
	PhaseGradingFailed            Phase = "GradingFailed"
	PhaseMarkSubmittedFailed      Phase = "MarkSubmittedFailed"
	PhaseMarkGradedFailed         Phase = "MarkGradedFailed"
	PhaseRefreshFailed            Phase = "RefreshFailed"
	PhaseFeedbackFailed           Phase = "FeedbackFailed"
)

// PhaseError is the single failure surfaced by an orchestrator run.
type PhaseError struct {
	Phase Phase
	RunID string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// FailedPhase returns the phase carried by err, if any.
func FailedPhase(err error) (Phase, bool) {
	var phaseErr *PhaseError
	if errors.As(err, &phaseErr) {
		return phaseErr.Phase, true
	}
	return "", false
}
