package vuln

import "strings"

// Alias links a service-specific vulnerability identifier to a CVE identifier believed
// to denote the same real-world vulnerability. Alias application is additive and
// idempotent.
type Alias struct {
	OssIndexID string
	CveID      string
}

// IsValid requires both sides of the mapping and a plausible CVE id. The prefix guard
// defends against upstream data that occasionally places non-CVE ids in the CVE field.
func (a Alias) IsValid() bool {
	return a.OssIndexID != "" && strings.HasPrefix(a.CveID, "CVE-")
}
