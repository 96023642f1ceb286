// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeAINotConfigured, http.StatusServiceUnavailable},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeInvalidQuestion, http.StatusBadRequest},
		{ErrCodeUnsupportedIntent, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodePlannerFailed, http.StatusInternalServerError},
		{ErrCodePlannerSchemaViolation, http.StatusInternalServerError},
		{ErrCodeQueryFailed, http.StatusInternalServerError},
		{ErrCodeSummarizerFailed, http.StatusInternalServerError},
		{ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestPublicMessage_HidesUpstreamDetails(t *testing.T) {
	err := NewPlannerFailedError(fmt.Errorf("googleapi: 403 API key invalid"))

	assert.Equal(t, GenericFailureMessage, PublicMessage(err))
	assert.Contains(t, err.Details, "API key invalid")
}

func TestPublicMessage_ClientErrorsKeepMessage(t *testing.T) {
	assert.Equal(t, "Unauthorized", PublicMessage(NewUnauthorizedError()))
	assert.Equal(t, "AI features are not configured", PublicMessage(NewAINotConfiguredError()))
}

func TestNormalize(t *testing.T) {
	plain := stderrors.New("boom")
	stdErr := Normalize(plain)
	assert.Equal(t, ErrCodeInternal, stdErr.Code)
	assert.True(t, stderrors.Is(stdErr, plain))

	wrapped := fmt.Errorf("stage: %w", NewQueryFailedError("count_opportunities", plain))
	assert.Equal(t, ErrCodeQueryFailed, Normalize(wrapped).Code)
}

func TestConvertToBPMNError(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewSummarizerFailedError(stderrors.New("timeout")))

	require.NotNil(t, bpmnErr)
	assert.Equal(t, "SUMMARIZER_FAILED", bpmnErr.Code)
	assert.Equal(t, GenericFailureMessage, bpmnErr.Message)
	assert.Equal(t, 0, bpmnErr.Retries)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "SUMMARIZER_FAILED", vars["errorCode"])
	assert.Equal(t, http.StatusInternalServerError, vars["httpStatus"])
	assert.NotContains(t, vars, "errorDetails")
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AI", GetErrorCategory(ErrCodePlannerSchemaViolation))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryFailed))
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeUnauthorized))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidQuestion))
	assert.Equal(t, "RATE_LIMIT", GetErrorCategory(ErrCodeRateLimited))
}
