package core

import (
	"regexp"
	"strings"
)

// PlaceholderVersion is stamped into declarations produced by an unreleased,
// locally built compiler.
const PlaceholderVersion = "0.0.0-PLACEHOLDER"

// CurrentBuildVersionRange is the semver range that matches declarations
// produced by this very build. It is registered ahead of every other range.
const CurrentBuildVersionRange = PlaceholderVersion

// Version represents a semantic version
type Version struct {
	Full  string
	Major string
	Minor string
	Patch string
}

// NewVersion creates a new Version from a full version string
func NewVersion(full string) *Version {
	parts := strings.Split(full, ".")
	v := &Version{Full: full}
	if len(parts) > 0 {
		v.Major = parts[0]
	}
	if len(parts) > 1 {
		v.Minor = parts[1]
	}
	if len(parts) > 2 {
		v.Patch = strings.Join(parts[2:], ".")
	}
	return v
}

// BuildVersion is overridden at link time with -ldflags "-X".
var BuildVersion = PlaceholderVersion

var v1To18Regexp = regexp.MustCompile(`^([1-9]|1[0-8])\.`)

// GetJitStandaloneDefaultForVersion returns whether a declaration of the given
// version is standalone when it does not say so explicitly.
func GetJitStandaloneDefaultForVersion(version string) bool {
	if strings.HasPrefix(version, "0.") {
		// 0.0.0 is always "latest", default is true
		return true
	}
	if v1To18Regexp.MatchString(version) {
		return false
	}
	return true
}
