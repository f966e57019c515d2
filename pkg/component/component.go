package component

import (
	"github.com/google/uuid"
	"github.com/package-url/packageurl-go"

	"github.com/bastionlabs/vulnsync/pkg/vuln"
)

// Component is a scanned software component subject to analysis.
type Component struct {
	ID      uuid.UUID
	Name    string
	Group   string
	Version string

	// Purl is the package coordinate, when the component has one.
	Purl string

	// Cpe is the platform coordinate, when the component has one.
	Cpe string

	// Internal components are never submitted to external services.
	Internal bool

	// Vulnerabilities accumulates the records attached to this component over the
	// current analysis session.
	Vulnerabilities []vuln.Record
}

// PackageURL parses the component's package coordinate.
func (c Component) PackageURL() (packageurl.PackageURL, error) {
	return packageurl.FromString(c.Purl)
}

// HasMinimalCoordinate reports whether the component carries a parseable package
// coordinate with both a name and a version, the minimum needed for analysis.
func (c Component) HasMinimalCoordinate() bool {
	p, err := c.PackageURL()
	if err != nil {
		return false
	}
	return p.Name != "" && p.Version != ""
}

// AddVulnerability attaches a record to the component for the current session.
func (c *Component) AddVulnerability(record vuln.Record) {
	c.Vulnerabilities = append(c.Vulnerabilities, record)
}
