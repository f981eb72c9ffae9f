package app

import (
	"fmt"
	"runtime/debug"
)

const serviceName = "eduprompt"

// Version, Commit and BuildTime are stamped with -ldflags -X at release time.
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// BuildVersion returns the version string reported by /health and the
// startup log. Without stamped values it falls back to the VCS data the Go
// toolchain embeds in the binary.
func BuildVersion() string {
	commit, built := Commit, BuildTime
	if commit == "" || built == "" {
		vcsCommit, vcsTime := vcsInfo()
		if commit == "" {
			commit = vcsCommit
		}
		if built == "" {
			built = vcsTime
		}
	}
	return fmt.Sprintf("%s %s (commit %s, built %s)", serviceName, Version, orUnknown(commit), orUnknown(built))
}

func vcsInfo() (revision, at string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
			if len(revision) > 12 {
				revision = revision[:12]
			}
		case "vcs.time":
			at = s.Value
		}
	}
	return revision, at
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
