// Package buildinfo holds the version strings stamped into graphedit at
// link time, for example:
//
//	go build -ldflags "-X github.com/matzehuels/graphedit/pkg/buildinfo.Version=$(git describe --tags) \
//	    -X github.com/matzehuels/graphedit/pkg/buildinfo.Commit=$(git rev-parse HEAD)" ./cmd/graphedit
//
// Unstamped builds report themselves as "dev".
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// shortCommit trims a full SHA to the width git log shows.
func shortCommit() string {
	if len(Commit) > 12 {
		return Commit[:12]
	}
	return Commit
}

// Template is the cobra version template: the tag, then the commit and
// build date when they were stamped.
func Template() string {
	s := "{{.Name}} " + Version
	if c := shortCommit(); c != "" {
		s += " (" + c + ")"
	}
	if Date != "" {
		s += " built " + Date
	}
	return s + "\n"
}

// CacheScope prefixes cache keys so a layout written by one build is never
// read by another; DOT parsing differs between them.
func CacheScope() string {
	return fmt.Sprintf("%s+%s:", Version, shortCommit())
}
