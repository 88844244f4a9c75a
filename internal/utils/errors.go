package utils

import (
	"fmt"

	"github.com/dl-alexandre/rmirror/internal/types"
)

// Exit codes
const (
	ExitSuccess = 0
	// Remote errors (30-39)
	ExitNetworkError   = 30
	ExitNotFound       = 31
	ExitInvalidPayload = 32
	ExitAccessDenied   = 33
	// Validation errors (40-49)
	ExitInvalidArgument = 40
	ExitInvalidConfig   = 41
	// Local errors (50-59)
	ExitFilesystemError = 50
	ExitLocked          = 51
	// Unknown
	ExitUnknown = 99
)

// Error codes (tool-owned, stable)
const (
	ErrCodeNetworkError    = "NETWORK_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeAccessDenied    = "ACCESS_DENIED"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeInvalidPayload  = "INVALID_PAYLOAD"
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeInvalidConfig   = "INVALID_CONFIG"
	ErrCodeFilesystemError = "FILESYSTEM_ERROR"
	ErrCodeLocked          = "LOCKED"
	ErrCodeHistoryError    = "HISTORY_ERROR"
	ErrCodeInternalError   = "INTERNAL_ERROR"
	ErrCodeUnknown         = "UNKNOWN"
)

// CLIErrorBuilder helps construct CLIError instances
type CLIErrorBuilder struct {
	err types.CLIError
}

// NewCLIError creates a new error builder
func NewCLIError(code, message string) *CLIErrorBuilder {
	return &CLIErrorBuilder{
		err: types.CLIError{
			Code:    code,
			Message: message,
		},
	}
}

func (b *CLIErrorBuilder) WithHTTPStatus(status int) *CLIErrorBuilder {
	b.err.HTTPStatus = status
	return b
}

func (b *CLIErrorBuilder) WithRetryable(retryable bool) *CLIErrorBuilder {
	b.err.Retryable = retryable
	return b
}

func (b *CLIErrorBuilder) WithContext(key string, value interface{}) *CLIErrorBuilder {
	if b.err.Context == nil {
		b.err.Context = make(map[string]interface{})
	}
	b.err.Context[key] = value
	return b
}

func (b *CLIErrorBuilder) Build() types.CLIError {
	return b.err
}

// GetExitCode returns the exit code for an error code
func GetExitCode(errorCode string) int {
	mapping := map[string]int{
		ErrCodeNetworkError:    ExitNetworkError,
		ErrCodeRateLimited:     ExitNetworkError,
		ErrCodeNotFound:        ExitNotFound,
		ErrCodeAccessDenied:    ExitAccessDenied,
		ErrCodeInvalidPayload:  ExitInvalidPayload,
		ErrCodeInvalidArgument: ExitInvalidArgument,
		ErrCodeInvalidConfig:   ExitInvalidConfig,
		ErrCodeFilesystemError: ExitFilesystemError,
		ErrCodeLocked:          ExitLocked,
	}
	if code, ok := mapping[errorCode]; ok {
		return code
	}
	return ExitUnknown
}

// AppError is a custom error type that carries CLI error info
type AppError struct {
	CLIError types.CLIError
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.CLIError.Code, e.CLIError.Message)
}

// NewAppError creates an AppError from a CLIError
func NewAppError(cliErr types.CLIError) *AppError {
	return &AppError{CLIError: cliErr}
}
