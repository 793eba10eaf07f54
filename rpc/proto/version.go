package proto

import "fmt"

// --------------------------------------------------------------------------
// Protocol version
// --------------------------------------------------------------------------

// Version represents a wire protocol version as an ordered
// (major, minor, patch) triple. Versions are immutable values,
// equality is structural (plain ==).
type Version struct {
	Major uint16
	Minor uint16
	Patch uint16
}

// Supported protocol versions
var (
	V1_2_0 = Version{1, 2, 0}
	V1_3_0 = Version{1, 3, 0}
	V1_4_0 = Version{1, 4, 0} // Added: notification streams
	V1_5_0 = Version{1, 5, 0}
	V1_6_0 = Version{1, 6, 0} // Added: entry TTL support
	V1_7_0 = Version{1, 7, 0}
)

// supportedVersions is the fixed set of versions this client speaks,
// in ascending order
var supportedVersions = []Version{
	V1_2_0,
	V1_3_0,
	V1_4_0,
	V1_5_0,
	V1_6_0,
	V1_7_0,
}

// NewVersion creates a new protocol version
func NewVersion(major, minor, patch uint16) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// Compare returns -1, 0 or 1 if v is respectively older than, equal to or
// newer than other. Ordering is major first, then minor, then patch.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return cmpUint16(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return cmpUint16(v.Minor, other.Minor)
	}
	return cmpUint16(v.Patch, other.Patch)
}

// String returns the dotted representation of the version (e.g. "1.7.0")
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// IsSupported reports whether the given version is part of the fixed
// supported set
func IsSupported(v Version) bool {
	for _, s := range supportedVersions {
		if s == v {
			return true
		}
	}
	return false
}

// DefaultVersion returns the highest supported protocol version. It is the
// version initially proposed during the handshake.
func DefaultVersion() Version {
	return supportedVersions[len(supportedVersions)-1]
}

// SupportedVersions returns a copy of the supported version set in
// ascending order
func SupportedVersions() []Version {
	out := make([]Version, len(supportedVersions))
	copy(out, supportedVersions)
	return out
}

// cmpUint16 compares two uint16 values
func cmpUint16(a, b uint16) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
