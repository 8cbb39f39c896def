package types

import (
	"fmt"
	"time"
)

// InvalidDocumentPayloadError reports a document whose content is not a
// usable binary payload. The batch is rejected before any extraction.
type InvalidDocumentPayloadError struct {
	Name   string
	Reason string
}

func (e *InvalidDocumentPayloadError) Error() string {
	return fmt.Sprintf("invalid payload for document %q: %s", e.Name, e.Reason)
}

// ExtractionError wraps a PDF parsing failure for one document.
type ExtractionError struct {
	Name  string
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %q: %v", e.Name, e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// InferenceError wraps a failed model invocation.
type InferenceError struct {
	Cause error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %v", e.Cause)
}

func (e *InferenceError) Unwrap() error { return e.Cause }

// InferenceTimeoutError means the model did not answer within its time budget.
type InferenceTimeoutError struct {
	After time.Duration
	Cause error
}

func (e *InferenceTimeoutError) Error() string {
	if e.After > 0 {
		return fmt.Sprintf("inference timed out after %s", e.After)
	}
	return "inference timed out"
}

func (e *InferenceTimeoutError) Unwrap() error { return e.Cause }
