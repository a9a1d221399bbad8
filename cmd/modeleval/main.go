package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess   = 0 // Report completed
	ExitRunFailed = 1 // Report completed below the --min-accuracy threshold
	ExitError     = 2 // Configuration or runtime error
)

// RunFailureError indicates that the run completed and produced a report,
// but the recommendation accuracy fell below the requested threshold.
type RunFailureError struct {
	Message string
}

func (e *RunFailureError) Error() string {
	return e.Message
}

// exitCode maps an error returned by the root command onto a process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var runFailureErr *RunFailureError
	if errors.As(err, &runFailureErr) {
		return ExitRunFailed
	}
	return ExitError
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
