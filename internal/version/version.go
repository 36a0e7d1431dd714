// internal/version/version.go
package version

import "fmt"

var (
	// Version is the release version (set via -ldflags).
	Version = ""
	// Commit is the git commit hash (set via -ldflags).
	Commit = ""
	// BuildTime is the build timestamp (set via -ldflags).
	BuildTime = ""
)

// Protocol is the host control-channel protocol version reported on VER?.
const Protocol uint16 = 0x000A

type Info struct {
	Version   string
	Commit    string
	BuildTime string
}

func Resolve() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	return info
}

func String() string {
	info := Resolve()
	s := fmt.Sprintf("%s (protocol %04X)", info.Version, Protocol)
	if info.Commit != "" {
		s += " " + info.Commit
	}
	return s
}
