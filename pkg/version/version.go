// Package version carries build information set through -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Name is the binary name
const Name = "rmirror"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func Get() *Info {
	return &Info{
		Name:      Name,
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func (i *Info) String() string {
	return fmt.Sprintf("%s %s (%s) built %s", i.Name, i.Version, i.GitCommit, i.BuildTime)
}

// UserAgent is the User-Agent header sent to remote APIs
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s; %s)", Name, Version, runtime.GOOS, runtime.GOARCH)
}

// Headers implements types.TableRenderer
func (i *Info) Headers() []string {
	return []string{"Name", "Version", "Commit", "Built", "Go", "Platform"}
}

// Rows implements types.TableRenderer
func (i *Info) Rows() [][]string {
	return [][]string{{i.Name, i.Version, i.GitCommit, i.BuildTime, i.GoVersion, i.Platform}}
}

// EmptyMessage implements types.TableRenderer
func (i *Info) EmptyMessage() string {
	return ""
}
