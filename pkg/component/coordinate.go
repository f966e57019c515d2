package component

import (
	"fmt"
	"strings"

	"github.com/package-url/packageurl-go"
	"github.com/umisama/go-cpe"
)

// MinimizeCoordinate renders the canonical package coordinate string in the form the
// intelligence service can reliably match against. The service has two long-standing
// defects this works around: qualifiers/subpaths cause lookups to miss entirely, and a
// "v" version prefix (Go and PHP conventions) returns results for the wrong version
// scope. So: collapse "@v" to "@", then drop everything from the first "?" and the
// first "#".
func MinimizeCoordinate(p packageurl.PackageURL) string {
	s := p.ToString()
	s = strings.Replace(s, "@v", "@", 1)
	if i := strings.Index(s, "?"); i != -1 {
		s = s[:i]
	}
	if i := strings.Index(s, "#"); i != -1 {
		s = s[:i]
	}
	return s
}

// MinimizeCoordinateString parses and minimizes a raw coordinate string.
func MinimizeCoordinateString(coordinate string) (string, error) {
	p, err := packageurl.FromString(coordinate)
	if err != nil {
		return "", fmt.Errorf("invalid package coordinate %q: %w", coordinate, err)
	}
	return MinimizeCoordinate(p), nil
}

// UpgradeLegacyCoordinate converts a coordinate in the service's legacy scheme
// ("maven:org.acme:foo:1.0") into the modern scheme by prepending the scheme prefix and
// converting the first separator after the scheme segment ("pkg:maven/org.acme:foo:1.0"
// style input is returned as-is once parsed). Coordinates already using the modern
// prefix are parsed directly.
func UpgradeLegacyCoordinate(coordinate string) (packageurl.PackageURL, error) {
	if strings.HasPrefix(coordinate, "pkg:") {
		return packageurl.FromString(coordinate)
	}
	return packageurl.FromString("pkg:" + strings.Replace(coordinate, ":", "/", 1))
}

// NormalizeCpe returns the canonical formatted form of a CPE 2.3 platform coordinate,
// suitable for string comparison.
func NormalizeCpe(s string) (string, error) {
	item, err := cpe.NewItemFromFormattedString(s)
	if err != nil {
		return "", fmt.Errorf("invalid platform coordinate %q: %w", s, err)
	}
	return item.Formatted(), nil
}
