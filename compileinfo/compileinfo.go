// Package compileinfo reports which commit a binary was built from, for the
// startup banner and the dashboard footer.
package compileinfo

import (
	"fmt"
	"os"
	"runtime/debug"
)

type CompileInfo struct {
	Package    string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

// Short is the first 12 characters of the commit, or "unknown".
func (c CompileInfo) Short() string {
	if c.Commit == "" {
		return "unknown"
	}
	if len(c.Commit) > 12 {
		return c.Commit[:12]
	}

	return c.Commit
}

func (c CompileInfo) String() string {
	mod := ""
	if c.Modified {
		mod = " (with uncommitted changes)"
	}

	return fmt.Sprintf("%s built with %s at commit %s (%s)%s", c.Package, c.GoVersion, c.Short(), c.CommitTime, mod)
}

func Get() CompileInfo {
	out := CompileInfo{}

	z, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	return fromBuildInfo(z)
}

func fromBuildInfo(z *debug.BuildInfo) CompileInfo {
	out := CompileInfo{
		GoVersion: z.GoVersion,
		Package:   z.Path,
	}

	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

// PrintToStdErr writes the banner line to os.Stderr.
func PrintToStdErr() {
	fmt.Fprintf(os.Stderr, "%s\n", Get())
}
