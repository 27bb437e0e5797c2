package service

import (
	"errors"
	"strings"
	"time"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Metrics receives service-level counters. A no-op implementation is used
// when none is supplied.
type Metrics interface {
	IncrementSubmitted(claimType string)
	IncrementTransition(status string)
	IncrementApprovalBlocked()
	IncrementExport(format string)
	ObserveEvaluateLatency(d time.Duration)
}

var (
	// ErrValidation is the sentinel behind every *ValidationError
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateClaim is returned when a claim id is already registered
	ErrDuplicateClaim = errors.New("claim id already exists")
	// ErrClaimClosed is returned when evidence changes are attempted on an
	// approved or rejected claim
	ErrClaimClosed = errors.New("claim is closed")
	// ErrUploadTooLarge is returned when a file exceeds the upload limit
	ErrUploadTooLarge = errors.New("upload exceeds size limit")
)

// ValidationError lists the problems found in a request.
// MissingDocuments is set when intake documents were not supplied.
type ValidationError struct {
	Problems         []string
	MissingDocuments []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func (e *ValidationError) add(problem string) {
	e.Problems = append(e.Problems, problem)
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// DefaultActor is recorded when a caller does not identify itself
const DefaultActor = "system"

func actorOrDefault(actor string) string {
	if actor = strings.TrimSpace(actor); actor == "" {
		return DefaultActor
	}
	return actor
}

type noopMetrics struct{}

func (noopMetrics) IncrementSubmitted(string)            {}
func (noopMetrics) IncrementTransition(string)           {}
func (noopMetrics) IncrementApprovalBlocked()            {}
func (noopMetrics) IncrementExport(string)               {}
func (noopMetrics) ObserveEvaluateLatency(time.Duration) {}
