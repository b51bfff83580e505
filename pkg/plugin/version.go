package plugin

import (
	"fmt"
	"strconv"
	"strings"
)

// Version represents a parsed protocol version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses a version string in "MAJOR.MINOR.PATCH" format.
func ParseVersion(version string) (Version, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version format: %s (expected MAJOR.MINOR.PATCH)", version)
	}

	var nums [3]int
	for i, name := range []string{"major", "minor", "patch"} {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid %s version: %s", name, parts[i])
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String returns the string representation of the version.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v Version) less(o Version) bool {
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// IsCompatible checks a plugin's protocol version against this host.
// The major version must match and the version must not be older than
// MinCompatibleVersion; newer minor and patch versions are accepted.
func IsCompatible(pluginVersion string) (bool, error) {
	pv, err := ParseVersion(pluginVersion)
	if err != nil {
		return false, fmt.Errorf("failed to parse plugin version: %w", err)
	}
	current, _ := ParseVersion(ProtocolVersion)
	minimum, _ := ParseVersion(MinCompatibleVersion)

	if pv.Major != current.Major {
		return false, fmt.Errorf("incompatible major version: plugin is %s, tabtint requires %d.x.x", pv, current.Major)
	}
	if pv.Major == minimum.Major && pv.less(minimum) {
		return false, fmt.Errorf("plugin version %s is too old, minimum required is %s", pv, MinCompatibleVersion)
	}
	return true, nil
}
