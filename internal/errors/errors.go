package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

const (
	CodeValidation    = "E100"
	CodeExternalAPI   = "E300"
	CodeConfiguration = "E600"
)

// AppError is an error annotated with a stable code and a severity used for reporting.
type AppError struct {
	Code     string
	Message  string
	Severity Severity
	cause    error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:     CodeValidation,
		Message:  msg,
		Severity: SeverityLow,
	}
}

// NewExternalAPIError wraps a failed call to a third-party service such as the messaging provider.
func NewExternalAPIError(apiName string, cause error) *AppError {
	return &AppError{
		Code:     CodeExternalAPI,
		Message:  fmt.Sprintf("external API error: %s", apiName),
		Severity: SeverityMedium,
		cause:    cause,
	}
}

// NewConfigurationError reports a setting that must be present for an operation to run.
func NewConfigurationError(msg string) *AppError {
	return &AppError{
		Code:     CodeConfiguration,
		Message:  msg,
		Severity: SeverityHigh,
	}
}
