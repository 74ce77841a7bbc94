package bst

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a BuildStream major.minor version.
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// ParseVersion reads the output of `bst --version`, e.g. "1.4.3" or
// "bst, version 2.2.1".
func ParseVersion(out string) (Version, error) {
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) == 0 {
		return Version{}, fmt.Errorf("empty version string")
	}
	text := fields[len(fields)-1]
	parts := strings.Split(text, ".")
	if len(parts) < 2 {
		return Version{}, fmt.Errorf("malformed version string %q", text)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("malformed version string %q", text)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, fmt.Errorf("malformed version string %q", text)
	}
	return Version{Major: major, Minor: minor}, nil
}

// commandSet holds the version-specific subcommands.
type commandSet struct {
	track     []string
	fetch     []string
	workspace bool
}

// commandsFor picks the command set for v. BuildStream 1.90 to 1.92 were
// development snapshots with neither interface.
func commandsFor(v Version) (commandSet, error) {
	switch {
	case v.Major == 1 && v.Minor < 90:
		return commandSet{
			track:     []string{"track", "--deps", "none"},
			fetch:     []string{"--on-error", "continue", "fetch", "--deps", "none"},
			workspace: true,
		}, nil
	case v.Major == 1 && v.Minor >= 93, v.Major == 2:
		return commandSet{
			track: []string{"source", "track", "--deps", "none"},
			fetch: []string{"--on-error", "continue", "source", "fetch", "--deps", "none"},
		}, nil
	default:
		return commandSet{}, fmt.Errorf("BuildStream version not supported: %s", v)
	}
}
