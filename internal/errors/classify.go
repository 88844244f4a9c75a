// Package errors maps failures from every layer to CLI error envelopes.
package errors

import (
	stderrors "errors"

	"github.com/dl-alexandre/rmirror/internal/lock"
	"github.com/dl-alexandre/rmirror/internal/logging"
	"github.com/dl-alexandre/rmirror/internal/provider"
	"github.com/dl-alexandre/rmirror/internal/sync"
	"github.com/dl-alexandre/rmirror/internal/types"
	"github.com/dl-alexandre/rmirror/internal/utils"
	"google.golang.org/api/googleapi"
)

// Classify turns err into a CLIError carrying a stable code, the HTTP
// status when there is one, and a suggested action. An *utils.AppError is
// returned unchanged.
func Classify(err error, traceID string, logger logging.Logger) types.CLIError {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}

	var appErr *utils.AppError
	if stderrors.As(err, &appErr) {
		return appErr.CLIError
	}

	var (
		transportErr *provider.TransportError
		shapeErr     *provider.PayloadShapeError
		fsErr        *sync.FilesystemError
		builder      *utils.CLIErrorBuilder
	)

	switch {
	case stderrors.As(err, &transportErr):
		builder = classifyTransport(transportErr, err)
	case stderrors.As(err, &shapeErr):
		builder = utils.NewCLIError(utils.ErrCodeInvalidPayload, err.Error()).
			WithContext("url", shapeErr.URL).
			WithContext("got", shapeErr.Got).
			WithContext("suggestedAction", "check that the API base URL points at a repository contents API")
	case stderrors.Is(err, lock.ErrLocked):
		builder = utils.NewCLIError(utils.ErrCodeLocked, err.Error()).
			WithRetryable(true).
			WithContext("suggestedAction", "wait for the other rmirror process to finish")
	case stderrors.As(err, &fsErr):
		builder = utils.NewCLIError(utils.ErrCodeFilesystemError, err.Error()).
			WithContext("path", fsErr.Path).
			WithContext("op", fsErr.Op)
	default:
		builder = utils.NewCLIError(utils.ErrCodeUnknown, err.Error())
	}

	if traceID != "" {
		builder.WithContext("traceId", traceID)
	}
	cliErr := builder.Build()

	logger.Error("Error classified",
		logging.F("errorCode", cliErr.Code),
		logging.F("httpStatus", cliErr.HTTPStatus),
		logging.F("retryable", cliErr.Retryable),
		logging.F("message", cliErr.Message),
		logging.F("traceId", traceID),
	)
	return cliErr
}

func classifyTransport(te *provider.TransportError, err error) *utils.CLIErrorBuilder {
	var code string
	var retryable bool

	switch te.StatusCode {
	case 0:
		code = utils.ErrCodeNetworkError
		retryable = true
	case 401, 403:
		code = utils.ErrCodeAccessDenied
		var apiErr *googleapi.Error
		if stderrors.As(err, &apiErr) {
			for _, e := range apiErr.Errors {
				switch e.Reason {
				case "userRateLimitExceeded", "rateLimitExceeded", "dailyLimitExceeded":
					code = utils.ErrCodeRateLimited
					retryable = true
				}
			}
		}
	case 404:
		code = utils.ErrCodeNotFound
	case 429:
		code = utils.ErrCodeRateLimited
		retryable = true
	case 500, 502, 503, 504:
		code = utils.ErrCodeNetworkError
		retryable = true
	default:
		code = utils.ErrCodeUnknown
		retryable = te.StatusCode >= 500
	}

	builder := utils.NewCLIError(code, err.Error()).
		WithRetryable(retryable).
		WithContext("url", te.URL)
	if te.StatusCode != 0 {
		builder.WithHTTPStatus(te.StatusCode)
	}

	switch code {
	case utils.ErrCodeNotFound:
		builder.WithContext("suggestedAction", "verify the org/repo coordinate, ref or folder ID")
	case utils.ErrCodeAccessDenied:
		builder.WithContext("suggestedAction", "the repository or folder must be publicly readable")
	case utils.ErrCodeRateLimited:
		builder.WithContext("suggestedAction", "wait for the rate limit window to reset and run again")
	case utils.ErrCodeNetworkError:
		builder.WithContext("suggestedAction", "check connectivity and run again")
	}
	return builder
}
