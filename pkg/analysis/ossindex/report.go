package ossindex

// ComponentReport is one entry of the service's component-report response: the
// coordinate that was looked up plus everything known against it.
type ComponentReport struct {
	Coordinates     string                `json:"coordinates"`
	Description     string                `json:"description"`
	Reference       string                `json:"reference"`
	Vulnerabilities []ReportVulnerability `json:"vulnerabilities"`
}

// ReportVulnerability is a single finding within a component report. The Cve field is
// only sometimes populated, and is known to occasionally carry non-CVE identifiers.
type ReportVulnerability struct {
	ID                 string   `json:"id"`
	Cve                string   `json:"cve"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Cwe                string   `json:"cwe"`
	CvssScore          *float64 `json:"cvssScore"`
	CvssVector         string   `json:"cvssVector"`
	Reference          string   `json:"reference"`
	ExternalReferences []string `json:"externalReferences"`
}
