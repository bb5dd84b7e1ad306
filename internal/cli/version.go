package cli

import (
	"runtime/debug"
	"strings"
)

const devVersion = "dev"

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// resolvedVersion picks the string reported by --version. Release
// builds inject it through ldflags; `go install` builds fall back to
// the main module version, source builds to the vcs revision.
func resolvedVersion(injected string) string {
	injected = strings.TrimSpace(injected)
	if injected != "" && injected != devVersion {
		return injected
	}
	if fromBuild := versionFromBuildInfo(); fromBuild != "" {
		return fromBuild
	}
	if injected != "" {
		return injected
	}
	return devVersion
}

func versionFromBuildInfo() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return ""
	}
	if main := strings.TrimSpace(info.Main.Version); main != "" && main != "(devel)" {
		return main
	}

	revision := ""
	dirty := false
	for _, setting := range info.Settings {
		value := strings.TrimSpace(setting.Value)
		switch setting.Key {
		case "vcs.revision":
			revision = value
		case "vcs.modified":
			dirty = strings.EqualFold(value, "true")
		}
	}
	if revision == "" {
		return ""
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if dirty {
		revision += "-dirty"
	}
	return revision
}
