// Package execution contains the inference collaborators that turn a
// (model, prompt) pair into response text.
package execution

import (
	"context"
	"errors"
	"strings"

	"github.com/spboyer/modeleval/internal/models"
)

//go:generate go tool mockgen -source=generator.go -destination=mock_generator.go -package=execution

// Generator produces a model's response to a prompt. Failures are reported
// as *models.InferenceError; retry policy belongs to the implementation.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Shutdowner is implemented by generators that hold external resources.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// Shutdown releases g's resources if it has any.
func Shutdown(ctx context.Context, g Generator) error {
	if s, ok := g.(Shutdowner); ok {
		return s.Shutdown(ctx)
	}
	return nil
}

var errEmptyResponse = errors.New("model returned an empty response")

// inferenceError wraps err for model, leaving existing InferenceErrors alone.
func inferenceError(model string, err error) error {
	var ie *models.InferenceError
	if errors.As(err, &ie) {
		return err
	}
	return &models.InferenceError{Model: model, Err: err}
}

// checkResponse turns a blank response into an InferenceError.
func checkResponse(model, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", inferenceError(model, errEmptyResponse)
	}
	return text, nil
}
