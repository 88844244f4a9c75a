package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"testing"

	"github.com/dl-alexandre/rmirror/internal/lock"
	"github.com/dl-alexandre/rmirror/internal/provider"
	"github.com/dl-alexandre/rmirror/internal/sync"
	"github.com/dl-alexandre/rmirror/internal/utils"
	"google.golang.org/api/googleapi"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
		retryable  bool
	}{
		{
			name:      "network failure",
			err:       &provider.TransportError{Op: "list", URL: "http://x", Err: stderrors.New("connection refused")},
			wantCode:  utils.ErrCodeNetworkError,
			retryable: true,
		},
		{
			name:       "not found wrapped",
			err:        fmt.Errorf("failed to list remote root: %w", &provider.TransportError{Op: "list", URL: "http://x", StatusCode: 404}),
			wantCode:   utils.ErrCodeNotFound,
			wantStatus: 404,
		},
		{
			name:       "forbidden",
			err:        &provider.TransportError{Op: "list", URL: "http://x", StatusCode: 403},
			wantCode:   utils.ErrCodeAccessDenied,
			wantStatus: 403,
		},
		{
			name: "drive rate limit",
			err: &provider.TransportError{Op: "list", URL: "drive:abc", StatusCode: 403, Err: &googleapi.Error{
				Code:   403,
				Errors: []googleapi.ErrorItem{{Reason: "userRateLimitExceeded"}},
			}},
			wantCode:   utils.ErrCodeRateLimited,
			wantStatus: 403,
			retryable:  true,
		},
		{
			name:       "server error",
			err:        &provider.TransportError{Op: "fetch", URL: "http://x", StatusCode: 502},
			wantCode:   utils.ErrCodeNetworkError,
			wantStatus: 502,
			retryable:  true,
		},
		{
			name:     "payload shape",
			err:      &provider.PayloadShapeError{URL: "http://x", Got: "object"},
			wantCode: utils.ErrCodeInvalidPayload,
		},
		{
			name:     "filesystem",
			err:      &sync.FilesystemError{Op: "mkdir", Path: "/x", Err: os.ErrPermission},
			wantCode: utils.ErrCodeFilesystemError,
		},
		{
			name:      "locked",
			err:       fmt.Errorf("acquire: %w", lock.ErrLocked),
			wantCode:  utils.ErrCodeLocked,
			retryable: true,
		},
		{
			name:     "unknown",
			err:      stderrors.New("boom"),
			wantCode: utils.ErrCodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err, "trace-1", nil)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", got.Code, tt.wantCode)
			}
			if got.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", got.HTTPStatus, tt.wantStatus)
			}
			if got.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", got.Retryable, tt.retryable)
			}
			if got.Context["traceId"] != "trace-1" {
				t.Errorf("Expected traceId in context, got %v", got.Context)
			}
		})
	}
}

func TestClassifyPassesAppErrorThrough(t *testing.T) {
	appErr := utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument, "bad flag").Build())
	got := Classify(fmt.Errorf("wrapped: %w", appErr), "", nil)
	if got.Code != utils.ErrCodeInvalidArgument || got.Message != "bad flag" {
		t.Errorf("Expected AppError unchanged, got %+v", got)
	}
}
