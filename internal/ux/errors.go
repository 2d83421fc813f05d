package ux

import (
	"fmt"
	"strings"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError analyzes an error and adds contextual suggestions
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	errMsg := err.Error()

	// Configuration lookup failures
	if strings.Contains(errMsg, "config key not found") {
		return NewErrorWithSuggestion(err,
			"Check the workflow file for the missing key, or run 'dagforge validate -f <file>' to see every problem at once")
	}

	if strings.Contains(errMsg, "platform file not found") {
		return NewErrorWithSuggestion(err,
			"Run 'dagforge platform list' to see known platforms, or point DAGFORGE_CONFIG_DIR at the directory holding your platform files")
	}

	// Template and keyword failures
	if strings.Contains(errMsg, "unresolved token") {
		return NewErrorWithSuggestion(err,
			"Define the named keyword in the workflow, task, or phase keywords block, or pass it on the command line with -k NAME=value")
	}

	if strings.Contains(errMsg, "undefined environment variable") {
		return NewErrorWithSuggestion(err,
			"Export the named variable before running, or replace the $VAR reference in the platform file with a literal path")
	}

	if strings.Contains(errMsg, "template file") && strings.Contains(errMsg, "no such file") {
		return NewErrorWithSuggestion(err,
			"Template paths resolve relative to the workflow file. Check the script/submit template entries for the failing phase")
	}

	// Chunking and node-set failures
	if strings.Contains(errMsg, "invalid ids-per-job") {
		return NewErrorWithSuggestion(err,
			"Set idsPerJob to a positive number in the task, the platform, or with --ids-per-job")
	}

	if strings.Contains(errMsg, "node-set mismatch") {
		return NewErrorWithSuggestion(err,
			"Every phase of a task must target the same node set. Remove the conflicting per-phase keyword or align its value with the preJob phase")
	}

	if strings.Contains(errMsg, "requires a node set") {
		return NewErrorWithSuggestion(err,
			"Pass --node-set <name>, set nodeSet on the task, or use --node-set auto to draw one from the sequence file")
	}

	// Output layout failures
	if strings.Contains(errMsg, "output path collision") {
		return NewErrorWithSuggestion(err,
			"Give each task (and each worker node) a distinct output path. Include $DAG_NODE in per-worker outputs")
	}

	if strings.Contains(errMsg, "missing unit source") {
		return NewErrorWithSuggestion(err,
			"Provide the work-unit list with --id-file, an inputFile entry on the task, or a totalUnits count")
	}

	// Verification failures
	if strings.Contains(errMsg, "drift detected") || strings.Contains(errMsg, "checksum mismatch") {
		return NewErrorWithSuggestion(err,
			"The generated artifacts no longer match their manifest. Regenerate the task with 'dagforge generate', or inspect the listed files before resubmitting")
	}

	if strings.Contains(errMsg, "unsupported schema") {
		return NewErrorWithSuggestion(err,
			"The manifest was written by an incompatible version. Regenerate the task to refresh it")
	}

	// Filesystem problems
	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check write access to the output root and the staging directory inside it")
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
