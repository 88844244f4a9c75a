package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dl-alexandre/rmirror/internal/logging"
	"github.com/dl-alexandre/rmirror/internal/types"
	"github.com/dl-alexandre/rmirror/internal/utils"
	"github.com/dl-alexandre/rmirror/pkg/version"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
)

const driveListFields = "nextPageToken, files(id, name, mimeType, size)"

// DriveOptions configures a DriveProvider
type DriveOptions struct {
	// APIKey authorizes reads of publicly shared folders
	APIKey string
	// Endpoint overrides the API base, mainly for tests
	Endpoint string
	// Transport is the base round tripper; http.DefaultTransport when nil.
	// Pass a *logging.DebugTransport to log every request.
	Transport http.RoundTripper
	Timeout   time.Duration
	Logger    logging.Logger
}

// DriveProvider mirrors a Google Drive folder. Refs are Drive file IDs.
type DriveProvider struct {
	service *drive.Service
	timeout time.Duration
	logger  logging.Logger
}

// NewDriveProvider builds the Drive service used for listing and download
func NewDriveProvider(ctx context.Context, opts DriveOptions) (*DriveProvider, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = utils.DefaultRequestTimeoutSec * time.Second
	}

	rt := opts.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	if opts.APIKey != "" {
		rt = &transport.APIKey{Key: opts.APIKey, Transport: rt}
	}

	clientOpts := []option.ClientOption{
		option.WithHTTPClient(&http.Client{Transport: rt}),
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	service, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	service.UserAgent = version.UserAgent()

	return &DriveProvider{
		service: service,
		timeout: opts.Timeout,
		logger:  logger,
	}, nil
}

// List pages through the non-trashed children of a folder. Shortcuts and
// Google-native documents have no downloadable bytes and are skipped.
func (p *DriveProvider) List(ctx context.Context, folderID string) ([]types.RemoteEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	query := fmt.Sprintf("'%s' in parents and trashed = false", escapeQueryValue(folderID))
	var entries []types.RemoteEntry
	pageToken := ""

	for {
		call := p.service.Files.List().
			Q(query).
			Fields(driveListFields).
			OrderBy("folder,name").
			PageSize(1000).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		result, err := call.Do()
		if err != nil {
			return nil, driveTransportError("list", folderID, err)
		}

		for _, f := range result.Files {
			switch {
			case f.MimeType == utils.MimeTypeFolder:
				entries = append(entries, types.RemoteEntry{
					Name:     f.Name,
					Kind:     types.EntryDirectory,
					ChildRef: f.Id,
				})
			case f.MimeType == utils.MimeTypeShortcut, strings.HasPrefix(f.MimeType, "application/vnd.google-apps."):
				p.logger.Debug("Skipping non-downloadable Drive item",
					logging.F("name", f.Name),
					logging.F("mimeType", f.MimeType),
					logging.F("folderId", folderID),
				)
			default:
				entries = append(entries, types.RemoteEntry{
					Name:       f.Name,
					Kind:       types.EntryFile,
					ContentRef: f.Id,
					Size:       f.Size,
				})
			}
		}

		if result.NextPageToken == "" {
			return entries, nil
		}
		pageToken = result.NextPageToken
	}
}

// Fetch opens the media stream of one file
func (p *DriveProvider) Fetch(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := p.service.Files.Get(fileID).
		SupportsAllDrives(true).
		Context(ctx).
		Download()
	if err != nil {
		return nil, driveTransportError("fetch", fileID, err)
	}
	return resp.Body, nil
}

func driveTransportError(op, id string, err error) error {
	te := &TransportError{Op: op, URL: "drive:" + id, Err: err}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		te.StatusCode = apiErr.Code
		te.Message = apiErr.Message
	}
	return te
}

func escapeQueryValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
