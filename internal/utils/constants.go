package utils

// Remote API defaults
const (
	GitHubAPIBase            = "https://api.github.com"
	GitHubAcceptHeader       = "application/vnd.github+json"
	GitHubAPIVersion         = "2022-11-28"
	DefaultRepository        = "github/gitignore"
	DefaultRequestTimeoutSec = 60
)

// Provider names
const (
	ProviderGitHub = "github"
	ProviderDrive  = "gdrive"
)

// Drive MIME types relevant to mirroring
const (
	MimeTypeFolder   = "application/vnd.google-apps.folder"
	MimeTypeShortcut = "application/vnd.google-apps.shortcut"
)

// Schema version
const SchemaVersion = "1.0"

// Local file modes
const (
	DirPerm  = 0755
	FilePerm = 0644
)
