package executor

import (
	"fmt"
	"runtime"
)

// ErrCode is one of the error kinds from spec.md §7. Modeled on
// internal/perrors.ErrCode, trimmed of the HTTP-status coupling since the
// executor is meant to be embeddable outside the HTTP plumbing it is invoked
// from.
type ErrCode struct {
	Code string
}

var (
	ErrCodeValidation = ErrCode{"validation_error"}
	ErrCodeNotFound   = ErrCode{"not_found"}
	ErrCodeTimeout    = ErrCode{"timeout"}
	ErrCodeInternal   = ErrCode{"internal_error"}
	ErrCodeProvider   = ErrCode{"provider_error"}
	ErrCodeTool       = ErrCode{"tool_error"}
	ErrCodeLockBusy   = ErrCode{"lock_busy"}
)

// ExecutorError is the error value carried on a terminal agent-error event
// and on AgentRunResult.Err. Grounded on internal/perrors.Err: message, the
// underlying error's text, a captured call stack, and structured args.
type ExecutorError struct {
	Code       ErrCode                  `json:"code"`
	Message    string                   `json:"message"`
	Cause      string                   `json:"cause,omitempty"`
	Stacktrace []string                 `json:"-"`
	Args       []map[string]interface{} `json:"args,omitempty"`
}

func (e *ExecutorError) Error() string {
	if e.Cause != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause)
	}
	return e.Message
}

// NewError builds an ExecutorError, capturing the call stack the way
// perrors.New does.
func NewError(code ErrCode, msg string, cause error, args ...map[string]interface{}) *ExecutorError {
	pc := make([]uintptr, 20)
	count := runtime.Callers(2, pc)
	frames := runtime.CallersFrames(pc[:count])

	var stacktrace []string
	for frame, more := frames.Next(); more; frame, more = frames.Next() {
		stacktrace = append(stacktrace, fmt.Sprintf("%s:%d", frame.File, frame.Line))
	}

	causeStr := ""
	if cause != nil {
		causeStr = cause.Error()
	}

	return &ExecutorError{
		Code:       code,
		Message:    msg,
		Cause:      causeStr,
		Stacktrace: stacktrace,
		Args:       args,
	}
}

func NewValidationError(msg string, cause error, args ...map[string]interface{}) *ExecutorError {
	return NewError(ErrCodeValidation, msg, cause, args...)
}

func NewNotFoundError(msg string, cause error, args ...map[string]interface{}) *ExecutorError {
	return NewError(ErrCodeNotFound, msg, cause, args...)
}

func NewTimeoutError(msg string, cause error, args ...map[string]interface{}) *ExecutorError {
	return NewError(ErrCodeTimeout, msg, cause, args...)
}

func NewInternalError(msg string, cause error, args ...map[string]interface{}) *ExecutorError {
	return NewError(ErrCodeInternal, msg, cause, args...)
}

func NewProviderError(msg string, cause error, args ...map[string]interface{}) *ExecutorError {
	return NewError(ErrCodeProvider, msg, cause, args...)
}
