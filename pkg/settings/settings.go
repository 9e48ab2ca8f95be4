// Package settings provides build metadata, per-run options, and context
// helpers shared by the jvx CLI and library packages.
package settings

import (
	"runtime"
	"runtime/debug"
)

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "jvx"

// StdinPath is the input path that selects standard input.
const StdinPath = "-"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string `json:"commit" yaml:"commit"`
	BuildVersion string `json:"version" yaml:"version"`
	BuildTime    string `json:"buildTime" yaml:"buildTime"`
	GoVersion    string `json:"goVersion" yaml:"goVersion"`
	Platform     string `json:"platform" yaml:"platform"`
}

// Resolve fills fields ldflags left at their defaults from the embedded Go
// build information.
func (v VersionInfo) Resolve() VersionInfo {
	out := v
	out.GoVersion = runtime.Version()
	out.Platform = runtime.GOOS + "/" + runtime.GOARCH
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}
	if info.GoVersion != "" {
		out.GoVersion = info.GoVersion
	}
	if out.BuildVersion == "v0.0.0-nightly" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		out.BuildVersion = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if out.Commit == "unknown" && s.Value != "" {
				out.Commit = s.Value
			}
		case "vcs.time":
			if out.BuildTime == "unknown" && s.Value != "" {
				out.BuildTime = s.Value
			}
		}
	}
	return out
}

// Run holds the options of a single invocation.
type Run struct {
	MinLogLevel int8
	// InputPath is the file to read; StdinPath or empty reads standard input.
	InputPath   string
	ConfigPath  string
	Theme       string
	NoColor     bool
	Interactive bool
}

// NewCliParams returns the defaults of a CLI run: info logging, colored
// output, input from standard input.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		InputPath:   StdinPath,
		NoColor:     false,
		Interactive: false,
	}
}

// ReadsStdin reports whether the run takes its input from standard input.
func (r *Run) ReadsStdin() bool {
	return r.InputPath == "" || r.InputPath == StdinPath
}
