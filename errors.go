package text2sql

import (
	"errors"
	"fmt"
)

// Error codes for specific failure types
const (
	ErrCodeSchemaDiscovery   = "SCHEMA_DISCOVERY_ERROR"
	ErrCodeGeneration        = "GENERATION_ERROR"
	ErrCodeUnsafeQuery       = "UNSAFE_QUERY"
	ErrCodeQueryExecution    = "QUERY_EXECUTION_ERROR"
	ErrCodeSynthesis         = "SYNTHESIS_ERROR"
	ErrCodeTaskNotFound      = "TASK_NOT_FOUND"
	ErrCodeTaskNotCancelable = "TASK_NOT_CANCELABLE"
	ErrCodeConfiguration     = "CONFIGURATION_ERROR"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// Error is the error type used throughout the text2sql pipeline. It carries a
// machine-readable code, the pipeline stage that failed, and the underlying
// cause when one exists.
type Error struct {
	Code    string // A machine-readable error code (e.g., ErrCodeUnsafeQuery)
	Stage   string // The stage where the error occurred (e.g., "generation", "execution")
	Message string // A human-readable message
	Cause   error  // The underlying error, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Stage, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Stage, e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error, allowing for error chaining.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new pipeline Error.
func NewError(code, stage, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}

// HasCode reports whether err (or any error it wraps) is a pipeline Error
// carrying the given code.
func HasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Specific error constructors

func NewSchemaDiscoveryError(cause error) *Error {
	return NewError(ErrCodeSchemaDiscovery, "schema", "schema discovery failed", cause)
}

func NewGenerationError(cause error) *Error {
	return NewError(ErrCodeGeneration, "generation", "SQL generation failed", cause)
}

func NewUnsafeQueryError(message string) *Error {
	return NewError(ErrCodeUnsafeQuery, "validation", message, nil)
}

func NewQueryExecutionError(cause error) *Error {
	return NewError(ErrCodeQueryExecution, "execution", "query execution failed", cause)
}

func NewSynthesisError(cause error) *Error {
	return NewError(ErrCodeSynthesis, "synthesis", "failed to synthesize answer", cause)
}

func NewTaskNotFoundError(taskID string) *Error {
	return NewError(ErrCodeTaskNotFound, "tasks", fmt.Sprintf("task '%s' not found", taskID), nil)
}

func NewTaskNotCancelableError(taskID, state string) *Error {
	msg := fmt.Sprintf("task '%s' is in state '%s' and cannot be canceled", taskID, state)
	return NewError(ErrCodeTaskNotCancelable, "tasks", msg, nil)
}

func NewConfigurationError(message string, cause error) *Error {
	return NewError(ErrCodeConfiguration, "initialization", message, cause)
}

func NewInternalError(stage, message string, cause error) *Error {
	return NewError(ErrCodeInternal, stage, message, cause)
}
