// Package version carries build metadata stamped in by the linker:
//
//	go build -ldflags "-X github.com/newtron-network/rosctl/pkg/version.Version=v0.4.0 \
//	  -X github.com/newtron-network/rosctl/pkg/version.GitCommit=abc1234 \
//	  -X github.com/newtron-network/rosctl/pkg/version.BuildDate=2026-01-01T00:00:00Z" ./cmd/rosctl
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns a formatted version string for display.
func Info() string {
	return Version + " (" + GitCommit + ") built " + BuildDate
}

// Line returns the one-line version banner for tool.
func Line(tool string) string {
	if Version == "dev" {
		return tool + " dev build (no version stamped at link time)"
	}
	return fmt.Sprintf("%s %s", tool, Info())
}
