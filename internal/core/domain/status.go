package domain

import "strings"

// Status is the lifecycle state of a job or step.
type Status string

const (
	// StatusPending indicates the unit is waiting to be scheduled.
	StatusPending Status = "pending"
	// StatusRunning indicates the unit is executing.
	StatusRunning Status = "running"
	// StatusSucceeded indicates the unit finished successfully.
	StatusSucceeded Status = "succeeded"
	// StatusFailed indicates the unit finished unsuccessfully.
	StatusFailed Status = "failed"
	// StatusSkipped indicates the unit never ran because an earlier step of its job failed.
	StatusSkipped Status = "skipped"
	// StatusCancelled indicates the unit was stopped by cancellation.
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether the status is final.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusSkipped, StatusCancelled:
		return true
	default:
		return false
	}
}

// NormalizeStatus converts a string to a Status, defaulting to pending if unknown.
func NormalizeStatus(s string) Status {
	switch st := Status(strings.ToLower(s)); st {
	case StatusPending, StatusRunning, StatusSucceeded, StatusFailed, StatusSkipped, StatusCancelled:
		return st
	default:
		return StatusPending
	}
}

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}
