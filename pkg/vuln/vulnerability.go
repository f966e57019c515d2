package vuln

import (
	"time"

	"github.com/bastionlabs/vulnsync/pkg/cwe"
)

// Source identifies the authority a vulnerability record originates from.
// (Source, ID) is unique within the canonical store.
type Source string

const (
	SourceNVD      Source = "NVD"
	SourceOSSIndex Source = "OSSINDEX"
	SourceInternal Source = "INTERNAL"
)

func (s Source) String() string {
	return string(s)
}

// Record is a canonical vulnerability record.
type Record struct {
	Source      Source
	ID          string
	Title       string
	Description string
	Cwes        []cwe.Weakness

	CvssV2Vector              string
	CvssV2BaseScore           *float64
	CvssV2ExploitabilityScore *float64
	CvssV2ImpactScore         *float64

	CvssV3Vector              string
	CvssV3BaseScore           *float64
	CvssV3ExploitabilityScore *float64
	CvssV3ImpactScore         *float64

	// custom-risk scores carried from internally-authored records
	RiskLikelihoodScore      *float64
	RiskTechnicalImpactScore *float64
	RiskBusinessImpactScore  *float64

	Severity Severity

	// References is a Markdown bullet list of links.
	References string

	Published *time.Time
	Modified  *time.Time
}

// AddCwe appends a weakness classification, ignoring duplicates.
func (r *Record) AddCwe(w cwe.Weakness) {
	for _, existing := range r.Cwes {
		if existing.ID == w.ID {
			return
		}
	}
	r.Cwes = append(r.Cwes, w)
}

// DeriveSeverity computes and stores the aggregate severity from whichever scores are
// present on the record. Both ingestion paths (feed parse and report synthesis) go
// through this exact derivation.
func (r *Record) DeriveSeverity() {
	r.Severity = SeverityFromScores(
		r.CvssV2BaseScore,
		r.CvssV3BaseScore,
		r.RiskLikelihoodScore,
		r.RiskTechnicalImpactScore,
		r.RiskBusinessImpactScore,
	)
}
