// internal/common/errors/errors.go

// Package errors provides the standardized error currency shared by the HTTP
// endpoint and the workflow job worker.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeAINotConfigured        ErrorCode = "AI_NOT_CONFIGURED"
	ErrCodeUnauthorized           ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidQuestion        ErrorCode = "INVALID_QUESTION"
	ErrCodeUnsupportedIntent      ErrorCode = "UNSUPPORTED_INTENT"
	ErrCodeRateLimited            ErrorCode = "RATE_LIMITED"
	ErrCodePlannerFailed          ErrorCode = "PLANNER_FAILED"
	ErrCodePlannerSchemaViolation ErrorCode = "PLANNER_SCHEMA_VIOLATION"
	ErrCodeQueryFailed            ErrorCode = "QUERY_FAILED"
	ErrCodeSummarizerFailed       ErrorCode = "SUMMARIZER_FAILED"
	ErrCodeSessionLookupFailed    ErrorCode = "SESSION_LOOKUP_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error. Details carry
// upstream failure text and are logged, never returned to callers.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

func newError(code ErrorCode, message string, cause error) *StandardError {
	stdErr := &StandardError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		stdErr.Details = cause.Error()
	}
	return stdErr
}

// ==========================
// 2. Error Constructors
// ==========================

func NewAINotConfiguredError() *StandardError {
	return newError(ErrCodeAINotConfigured, "AI features are not configured", nil)
}

func NewUnauthorizedError() *StandardError {
	return newError(ErrCodeUnauthorized, "Unauthorized", nil)
}

// NewInvalidQuestionError is returned when the question is missing or not a string.
func NewInvalidQuestionError(details string) *StandardError {
	e := newError(ErrCodeInvalidQuestion, "question is required and must be a string", nil)
	e.Details = details
	return e
}

func NewUnsupportedIntentError(intent string) *StandardError {
	e := newError(ErrCodeUnsupportedIntent, "Unsupported question type", nil)
	e.Details = fmt.Sprintf("intent: %s", intent)
	return e
}

func NewRateLimitedError(userID int64) *StandardError {
	e := newError(ErrCodeRateLimited, "Too many insight requests, try again later", nil)
	e.Details = fmt.Sprintf("userId: %d", userID)
	return e
}

func NewPlannerFailedError(err error) *StandardError {
	return newError(ErrCodePlannerFailed, "Intent planning failed", err)
}

func NewPlannerSchemaViolationError(err error) *StandardError {
	return newError(ErrCodePlannerSchemaViolation, "Intent plan did not match the expected shape", err)
}

func NewQueryFailedError(intent string, err error) *StandardError {
	e := newError(ErrCodeQueryFailed, "Insight query failed", err)
	e.Metadata = map[string]interface{}{"intent": intent}
	return e
}

func NewSummarizerFailedError(err error) *StandardError {
	return newError(ErrCodeSummarizerFailed, "Answer summarization failed", err)
}

func NewSessionLookupFailedError(err error) *StandardError {
	return newError(ErrCodeSessionLookupFailed, "Session lookup failed", err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err)
}

// ==========================
// 3. HTTP Mapping
// ==========================

// GenericFailureMessage is the only text a 500 response ever carries.
const GenericFailureMessage = "Failed to answer the question"

var httpStatusMapping = map[ErrorCode]int{
	ErrCodeAINotConfigured:        http.StatusServiceUnavailable,
	ErrCodeUnauthorized:           http.StatusUnauthorized,
	ErrCodeInvalidQuestion:        http.StatusBadRequest,
	ErrCodeUnsupportedIntent:      http.StatusBadRequest,
	ErrCodeRateLimited:            http.StatusTooManyRequests,
	ErrCodePlannerFailed:          http.StatusInternalServerError,
	ErrCodePlannerSchemaViolation: http.StatusInternalServerError,
	ErrCodeQueryFailed:            http.StatusInternalServerError,
	ErrCodeSummarizerFailed:       http.StatusInternalServerError,
	ErrCodeSessionLookupFailed:    http.StatusInternalServerError,
	ErrCodeInternal:               http.StatusInternalServerError,
}

// HTTPStatus returns the response status for an error code.
func HTTPStatus(code ErrorCode) int {
	if status, ok := httpStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the caller-facing message for err. Server errors
// collapse to GenericFailureMessage.
func PublicMessage(err error) string {
	stdErr := Normalize(err)
	if HTTPStatus(stdErr.Code) >= http.StatusInternalServerError && stdErr.Code != ErrCodeAINotConfigured {
		return GenericFailureMessage
	}
	return stdErr.Message
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// ==========================
// 4. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
// Details are left out: they may contain upstream internals.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// GetRetryCount returns the number of engine retries for a code. The insight
// pipeline never retries, so this is zero for every known code.
func GetRetryCount(code ErrorCode) int {
	return 0
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   PublicMessage(stdErr),
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   GetRetryCount(stdErr.Code),
		ErrorVariables: map[string]interface{}{
			"httpStatus": HTTPStatus(stdErr.Code),
			"timestamp":  stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "PLANNER") || strings.HasPrefix(codeStr, "SUMMARIZER") || codeStr == string(ErrCodeAINotConfigured):
		return "AI"
	case strings.HasPrefix(codeStr, "QUERY"):
		return "DATABASE"
	case codeStr == string(ErrCodeUnauthorized) || strings.HasPrefix(codeStr, "SESSION"):
		return "AUTH"
	case strings.HasPrefix(codeStr, "INVALID") || strings.HasPrefix(codeStr, "UNSUPPORTED"):
		return "VALIDATION"
	case codeStr == string(ErrCodeRateLimited):
		return "RATE_LIMIT"
	default:
		return "OTHER"
	}
}
