package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/dl-alexandre/rmirror/internal/logging"
	"github.com/dl-alexandre/rmirror/internal/resolver"
	"github.com/dl-alexandre/rmirror/internal/types"
	"github.com/dl-alexandre/rmirror/internal/utils"
	"github.com/dl-alexandre/rmirror/pkg/version"
	json "github.com/goccy/go-json"
	"github.com/imroc/req/v3"
)

// GitHubOptions configures a GitHubProvider
type GitHubOptions struct {
	BaseURL   string
	UserAgent string
	// Timeout bounds a single listing request. Downloads are not bounded.
	Timeout time.Duration
	Logger  logging.Logger
	Debug   bool
}

// GitHubProvider reads a repository through the GitHub contents API
type GitHubProvider struct {
	client  *req.Client
	baseURL string
	timeout time.Duration
	logger  logging.Logger
}

type githubEntry struct {
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	Type        string  `json:"type"`
	URL         string  `json:"url"`
	DownloadURL *string `json:"download_url"`
	Size        int64   `json:"size"`
}

// NewGitHubProvider creates a provider for the contents API at opts.BaseURL
func NewGitHubProvider(opts GitHubOptions) *GitHubProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = utils.GitHubAPIBase
	}
	if opts.UserAgent == "" {
		opts.UserAgent = version.UserAgent()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = utils.DefaultRequestTimeoutSec * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}

	client := req.C().
		SetUserAgent(opts.UserAgent).
		SetCommonHeader("Accept", utils.GitHubAcceptHeader).
		SetCommonHeader("X-GitHub-Api-Version", utils.GitHubAPIVersion).
		SetCommonRetryCount(0).
		DisableAutoDecode()

	if opts.Debug {
		client.OnAfterResponse(func(_ *req.Client, resp *req.Response) error {
			if resp.Response == nil || resp.Request == nil {
				return nil
			}
			logger.Debug("HTTP response",
				logging.F("method", resp.Request.Method),
				logging.F("url", resp.Request.RawURL),
				logging.F("status", resp.GetStatusCode()),
				logging.F("duration_ms", resp.TotalTime().Milliseconds()),
			)
			return nil
		})
	}

	return &GitHubProvider{
		client:  client,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: opts.Timeout,
		logger:  logger,
	}
}

// RootRef returns the listing URL of a repository's top-level directory.
// An empty ref selects the repository's default branch.
func (p *GitHubProvider) RootRef(coord resolver.Coordinate, ref string) string {
	u := fmt.Sprintf("%s/repos/%s/%s/contents", p.baseURL, url.PathEscape(coord.Owner), url.PathEscape(coord.Repo))
	if ref != "" {
		u += "?ref=" + url.QueryEscape(ref)
	}
	return u
}

// List fetches one directory listing. Entries keep the order of the
// response; symlinks and submodules are skipped.
func (p *GitHubProvider) List(ctx context.Context, dirRef string) ([]types.RemoteEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.R().SetContext(ctx).Get(dirRef)
	if err != nil {
		return nil, &TransportError{Op: "list", URL: dirRef, Err: err}
	}
	body, err := resp.ToBytes()
	if err != nil {
		return nil, &TransportError{Op: "list", URL: dirRef, StatusCode: resp.GetStatusCode(), Err: err}
	}
	if status := resp.GetStatusCode(); status < 200 || status > 299 {
		return nil, &TransportError{Op: "list", URL: dirRef, StatusCode: status, Message: errorMessage(body)}
	}

	return p.decodeListing(dirRef, body)
}

func (p *GitHubProvider) decodeListing(dirRef string, body []byte) ([]types.RemoteEntry, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &PayloadShapeError{URL: dirRef, Got: "empty body"}
	}
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &PayloadShapeError{URL: dirRef, Got: "malformed JSON", Err: err}
	}
	if kind := jsonKind(raw); kind != "array" {
		return nil, &PayloadShapeError{URL: dirRef, Got: kind}
	}

	var items []githubEntry
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &PayloadShapeError{URL: dirRef, Got: "array of unexpected elements", Err: err}
	}

	entries := make([]types.RemoteEntry, 0, len(items))
	for _, item := range items {
		switch item.Type {
		case "dir":
			entries = append(entries, types.RemoteEntry{
				Name:     item.Name,
				Kind:     types.EntryDirectory,
				ChildRef: item.URL,
			})
		case "file":
			entry := types.RemoteEntry{
				Name: item.Name,
				Kind: types.EntryFile,
				Size: item.Size,
			}
			if item.DownloadURL != nil {
				entry.ContentRef = *item.DownloadURL
			}
			entries = append(entries, entry)
		default:
			p.logger.Debug("Skipping unsupported entry",
				logging.F("name", item.Name),
				logging.F("type", item.Type),
				logging.F("listing", dirRef),
			)
		}
	}
	return entries, nil
}

// Fetch opens the raw content of one file
func (p *GitHubProvider) Fetch(ctx context.Context, contentRef string) (io.ReadCloser, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		DisableAutoReadResponse().
		Get(contentRef)
	if err != nil {
		return nil, &TransportError{Op: "fetch", URL: contentRef, Err: err}
	}
	if status := resp.GetStatusCode(); status < 200 || status > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &TransportError{Op: "fetch", URL: contentRef, StatusCode: status, Message: errorMessage(snippet)}
	}
	return resp.Body, nil
}

// errorMessage extracts the "message" field GitHub puts in error bodies
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func jsonKind(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "empty body"
	}
	switch raw[0] {
	case '[':
		return "array"
	case '{':
		return "object"
	case '"':
		return "string"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}
