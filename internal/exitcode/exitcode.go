package exitcode

import (
	"os"
	"strings"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ConfigError indicates an invalid or incomplete workflow configuration
	ConfigError = 3

	// DriftDetected indicates generated artifacts no longer match their manifest
	DriftDetected = 4

	// Interrupted indicates the run was cancelled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	errMsg := strings.ToLower(err.Error())

	// Manifest drift
	if strings.Contains(errMsg, "drift detected") {
		return DriftDetected
	}
	if strings.Contains(errMsg, "checksum mismatch") {
		return DriftDetected
	}

	// Configuration problems: missing keys, bad chunk sizes, unresolved
	// tokens, phase disagreements, colliding outputs.
	configMarkers := []string{
		"config key not found",
		"config key",
		"unresolved token",
		"invalid ids-per-job",
		"node-set mismatch",
		"output path collision",
		"platform file not found",
		"undefined environment variable",
	}
	for _, marker := range configMarkers {
		if strings.Contains(errMsg, marker) {
			return ConfigError
		}
	}

	// Command usage problems surfaced by flag parsing
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") {
		return UsageError
	}

	return GeneralError
}
