package framework

import (
	"errors"
	"fmt"
	"strings"
)

// AggregatedError collects errors from multiple sources.
type AggregatedError struct {
	Errors []error
}

// Add appends non-nil errors.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// Aggregate returns nil if nothing was collected, the error itself if
// there's exactly one, otherwise e.
func (e *AggregatedError) Aggregate() error {
	switch len(e.Errors) {
	case 0:
		return nil
	case 1:
		return e.Errors[0]
	}
	return e
}

// Error implements error.
func (e *AggregatedError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors", len(e.Errors))
	for _, err := range e.Errors {
		sb.WriteString("; ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Is implements errors.Is matching against any collected error.
func (e *AggregatedError) Is(target error) bool {
	for _, err := range e.Errors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
