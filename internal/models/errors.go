package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a precondition violation by the caller, such as
	// empty text or a prompt too short to classify. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoCandidateModels marks a configuration error: the model registry is
	// empty or a role points at a model that is not registered.
	ErrNoCandidateModels = errors.New("no candidate models")
)

// InferenceError reports a failed call to a hosted model. It is scoped to a
// single (prompt, model) pair and becomes a gap in the report.
type InferenceError struct {
	Model string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed for model %s: %v", e.Model, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// StorageError reports a failure of the history persistence layer.
type StorageError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("history %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("history %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
