package cli

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitOK     = 0
	ExitFailed = 1 // Compilation or check failed
	ExitError  = 2 // Usage, configuration or I/O error
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// FailedError reports that diagnostics were already printed for Count files.
// Commands return it so the process exits with ExitFailed without printing
// the errors a second time.
type FailedError struct {
	Count int
}

func (e *FailedError) Error() string {
	if e.Count == 1 {
		return "1 file failed"
	}
	return fmt.Sprintf("%d files failed", e.Count)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	var failed *FailedError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &failed):
		return ExitFailed
	default:
		return ExitError
	}
}

// IsReported reports whether err only signals diagnostics already printed.
func IsReported(err error) bool {
	var failed *FailedError
	return errors.As(err, &failed)
}
