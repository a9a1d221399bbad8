package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spboyer/modeleval/internal/models"
)

func TestRunFailureError(t *testing.T) {
	err := &RunFailureError{
		Message: "recommendation accuracy 40.0% is below the required 60.0%",
	}

	assert.Equal(t, "recommendation accuracy 40.0% is below the required 60.0%", err.Error())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil",
			err:  nil,
			want: ExitSuccess,
		},
		{
			name: "RunFailureError",
			err:  &RunFailureError{Message: "below threshold"},
			want: ExitRunFailed,
		},
		{
			name: "wrapped RunFailureError",
			err:  errors.Join(&RunFailureError{Message: "below threshold"}, errors.New("additional context")),
			want: ExitRunFailed,
		},
		{
			name: "regular error",
			err:  errors.New("config error"),
			want: ExitError,
		},
		{
			name: "invalid input",
			err:  fmt.Errorf("loading corpus: %w", models.ErrInvalidInput),
			want: ExitError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
