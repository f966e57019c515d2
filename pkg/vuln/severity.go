package vuln

// Severity is the aggregate severity bucket derived from available scores.
type Severity string

const (
	SeverityUnassigned Severity = "UNASSIGNED"
	SeverityInfo       Severity = "INFO"
	SeverityLow        Severity = "LOW"
	SeverityMedium     Severity = "MEDIUM"
	SeverityHigh       Severity = "HIGH"
	SeverityCritical   Severity = "CRITICAL"
)

// SeverityFromScores derives the aggregate severity deterministically from whichever of
// the given scores are present. CVSSv3 wins over CVSSv2, which wins over the
// custom-risk likelihood/impact pair.
func SeverityFromScores(v2Base, v3Base, riskLikelihood, riskTechnicalImpact, riskBusinessImpact *float64) Severity {
	switch {
	case v3Base != nil:
		return severityFromCvssV3(*v3Base)
	case v2Base != nil:
		return severityFromCvssV2(*v2Base)
	case riskLikelihood != nil && (riskTechnicalImpact != nil || riskBusinessImpact != nil):
		return severityFromRiskScores(*riskLikelihood, riskTechnicalImpact, riskBusinessImpact)
	}
	return SeverityUnassigned
}

func severityFromCvssV3(score float64) Severity {
	switch {
	case score >= 9:
		return SeverityCritical
	case score >= 7:
		return SeverityHigh
	case score >= 4:
		return SeverityMedium
	case score > 0:
		return SeverityLow
	}
	return SeverityUnassigned
}

func severityFromCvssV2(score float64) Severity {
	switch {
	case score >= 7:
		return SeverityHigh
	case score >= 4:
		return SeverityMedium
	case score > 0:
		return SeverityLow
	}
	return SeverityUnassigned
}

type riskLevel int

const (
	riskLow riskLevel = iota
	riskMedium
	riskHigh
)

func bucketRiskScore(score float64) riskLevel {
	switch {
	case score < 3:
		return riskLow
	case score < 6:
		return riskMedium
	}
	return riskHigh
}

// severityFromRiskScores combines a likelihood score with the greater of the technical
// and business impact scores through a fixed matrix.
func severityFromRiskScores(likelihood float64, technicalImpact, businessImpact *float64) Severity {
	impact := 0.0
	if technicalImpact != nil {
		impact = *technicalImpact
	}
	if businessImpact != nil && *businessImpact > impact {
		impact = *businessImpact
	}

	l := bucketRiskScore(likelihood)
	i := bucketRiskScore(impact)

	switch {
	case l == riskHigh && i == riskHigh:
		return SeverityCritical
	case l == riskHigh && i == riskMedium, l == riskMedium && i == riskHigh:
		return SeverityHigh
	case l == riskMedium && i == riskMedium, l == riskHigh && i == riskLow, l == riskLow && i == riskHigh:
		return SeverityMedium
	}
	return SeverityLow
}
