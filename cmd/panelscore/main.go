package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess         = 0 // Everything ran and passed its thresholds
	ExitThresholdFailed = 1 // A bias was detected or a quality threshold was missed
	ExitError           = 2 // Configuration or runtime error
)

// ThresholdError indicates that the command ran successfully but its
// result failed a requested quality gate.
type ThresholdError struct {
	Message string
}

func (e *ThresholdError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var thresholdErr *ThresholdError
	if errors.As(err, &thresholdErr) {
		return ExitThresholdFailed
	}
	return ExitError
}
