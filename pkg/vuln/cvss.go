package vuln

import (
	"fmt"
	"strings"

	gocvss20 "github.com/pandatix/go-cvss/20"
	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
)

// ApplyCvssV2 parses the given v2 vector and stores its canonical renormalized form,
// while keeping the supplied sub-scores exactly as provided (scores are NOT recomputed
// from the renormalized vector).
func (r *Record) ApplyCvssV2(vector string, base, exploitability, impact *float64) error {
	c, err := gocvss20.ParseVector(strings.TrimSpace(vector))
	if err != nil {
		return fmt.Errorf("unable to parse CVSSv2 vector %q: %w", vector, err)
	}
	r.CvssV2Vector = c.Vector()
	r.CvssV2BaseScore = base
	r.CvssV2ExploitabilityScore = exploitability
	r.CvssV2ImpactScore = impact
	return nil
}

// ApplyCvssV3 parses the given v3.0/v3.1 vector and stores its canonical renormalized
// form, keeping the supplied sub-scores exactly as provided.
func (r *Record) ApplyCvssV3(vector string, base, exploitability, impact *float64) error {
	canonical, _, err := parseV3(vector)
	if err != nil {
		return err
	}
	r.CvssV3Vector = canonical
	r.CvssV3BaseScore = base
	r.CvssV3ExploitabilityScore = exploitability
	r.CvssV3ImpactScore = impact
	return nil
}

// ApplyVector applies a CVSS vector of unknown version, deriving the base score from the
// vector itself. This is the synthesis path: service reports carry a vector but no
// separate score fields.
func (r *Record) ApplyVector(vector string) error {
	vector = strings.TrimSpace(vector)
	if strings.HasPrefix(vector, "CVSS:3") {
		canonical, base, err := parseV3(vector)
		if err != nil {
			return err
		}
		r.CvssV3Vector = canonical
		r.CvssV3BaseScore = &base
		return nil
	}

	c, err := gocvss20.ParseVector(vector)
	if err != nil {
		return fmt.Errorf("unable to parse CVSS vector %q: %w", vector, err)
	}
	base := c.BaseScore()
	r.CvssV2Vector = c.Vector()
	r.CvssV2BaseScore = &base
	return nil
}

func parseV3(vector string) (canonical string, base float64, err error) {
	vector = strings.TrimSpace(vector)
	switch {
	case strings.HasPrefix(vector, "CVSS:3.1"):
		c, err := gocvss31.ParseVector(vector)
		if err != nil {
			return "", 0, fmt.Errorf("unable to parse CVSSv3.1 vector %q: %w", vector, err)
		}
		return c.Vector(), c.BaseScore(), nil
	case strings.HasPrefix(vector, "CVSS:3.0"):
		c, err := gocvss30.ParseVector(vector)
		if err != nil {
			return "", 0, fmt.Errorf("unable to parse CVSSv3.0 vector %q: %w", vector, err)
		}
		return c.Vector(), c.BaseScore(), nil
	}
	return "", 0, fmt.Errorf("unrecognized CVSSv3 vector %q", vector)
}
