package vuln

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/umisama/go-cpe"
)

// PlatformPart classifies what kind of platform a range describes.
type PlatformPart string

const (
	PartApplication     PlatformPart = "a"
	PartOperatingSystem PlatformPart = "o"
	PartHardware        PlatformPart = "h"
)

// Range describes the applicability of a vulnerability to a platform: a normalized CPE
// 2.3 identity plus optional version bounds. Two ranges with identical semantic fields
// are the same range regardless of any storage-assigned row identity.
type Range struct {
	Cpe23   string
	Part    PlatformPart
	Vendor  string
	Product string
	Version string
	Update  string

	VersionStartIncluding string
	VersionStartExcluding string
	VersionEndIncluding   string
	VersionEndExcluding   string

	Vulnerable bool
}

// NewRangeFromCpe23 parses a formatted CPE 2.3 string into a Range. The version bound
// fields are left for the caller to populate.
func NewRangeFromCpe23(uri string) (*Range, error) {
	item, err := cpe.NewItemFromFormattedString(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid CPE %q: %w", uri, err)
	}

	r := Range{
		Cpe23:   uri,
		Vendor:  item.Vendor().String(),
		Product: item.Product().String(),
		Version: item.Version().String(),
		Update:  item.Update().String(),
	}

	switch item.Part() {
	case cpe.Application:
		r.Part = PartApplication
	case cpe.OperationgSystem:
		r.Part = PartOperatingSystem
	case cpe.Hardware:
		r.Part = PartHardware
	default:
		return nil, fmt.Errorf("invalid CPE %q: unknown part", uri)
	}

	return &r, nil
}

// Key is the semantic identity of the range, used for deduplication.
func (r Range) Key() string {
	return strings.Join([]string{
		r.Cpe23,
		string(r.Part),
		r.Vendor,
		r.Product,
		r.Version,
		r.Update,
		r.VersionStartIncluding,
		r.VersionStartExcluding,
		r.VersionEndIncluding,
		r.VersionEndExcluding,
		fmt.Sprintf("%t", r.Vulnerable),
	}, "|")
}

// AppliesTo reports whether the given concrete version falls within the range bounds.
// Bounds are interpreted as semver where possible; a version that cannot be interpreted
// falls back to exact-match against the CPE version field.
func (r Range) AppliesTo(version string) bool {
	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return r.Version == version
	}

	if r.hasBounds() {
		constraint := r.boundsConstraint()
		c, err := semver.NewConstraint(constraint)
		if err != nil {
			return false
		}
		return c.Check(v)
	}

	// no bounds: the CPE version field is authoritative ("*" matches anything)
	if r.Version == "" || r.Version == "*" || r.Version == "-" {
		return true
	}
	other, err := semver.NewVersion(strings.TrimPrefix(r.Version, "v"))
	if err != nil {
		return r.Version == version
	}
	return v.Equal(other)
}

func (r Range) hasBounds() bool {
	return r.VersionStartIncluding != "" || r.VersionStartExcluding != "" ||
		r.VersionEndIncluding != "" || r.VersionEndExcluding != ""
}

func (r Range) boundsConstraint() string {
	var parts []string
	if r.VersionStartIncluding != "" {
		parts = append(parts, ">= "+r.VersionStartIncluding)
	}
	if r.VersionStartExcluding != "" {
		parts = append(parts, "> "+r.VersionStartExcluding)
	}
	if r.VersionEndIncluding != "" {
		parts = append(parts, "<= "+r.VersionEndIncluding)
	}
	if r.VersionEndExcluding != "" {
		parts = append(parts, "< "+r.VersionEndExcluding)
	}
	return strings.Join(parts, ", ")
}

// DedupeRanges removes semantically identical ranges, preserving first-seen order.
func DedupeRanges(ranges []Range) []Range {
	seen := make(map[string]struct{}, len(ranges))
	var out []Range
	for _, r := range ranges {
		key := r.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
