package vuln

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 {
	return &v
}

func TestSeverityFromScores(t *testing.T) {
	tests := []struct {
		name                           string
		v2, v3, likelihood, tech, biz  *float64
		expected                       Severity
	}{
		{name: "v3 critical", v3: f(9.8), expected: SeverityCritical},
		{name: "v3 high", v3: f(7.5), expected: SeverityHigh},
		{name: "v3 medium", v3: f(5.3), expected: SeverityMedium},
		{name: "v3 low", v3: f(2.1), expected: SeverityLow},
		{name: "v3 zero", v3: f(0), expected: SeverityUnassigned},
		{name: "v3 wins over v2", v2: f(10), v3: f(5.0), expected: SeverityMedium},
		{name: "v2 high", v2: f(9.3), expected: SeverityHigh},
		{name: "v2 medium", v2: f(4.0), expected: SeverityMedium},
		{name: "v2 low", v2: f(1.9), expected: SeverityLow},
		{name: "risk critical", likelihood: f(8), tech: f(7), expected: SeverityCritical},
		{name: "risk high", likelihood: f(8), tech: f(4), expected: SeverityHigh},
		{name: "risk medium", likelihood: f(4), tech: f(5), expected: SeverityMedium},
		{name: "risk business impact dominates", likelihood: f(4), tech: f(1), biz: f(8), expected: SeverityHigh},
		{name: "risk low", likelihood: f(1), tech: f(1), expected: SeverityLow},
		{name: "nothing present", expected: SeverityUnassigned},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual := SeverityFromScores(test.v2, test.v3, test.likelihood, test.tech, test.biz)
			assert.Equal(t, test.expected, actual)
		})
	}
}

func TestRecord_DeriveSeverity(t *testing.T) {
	r := Record{CvssV3BaseScore: f(9.1)}
	r.DeriveSeverity()
	assert.Equal(t, SeverityCritical, r.Severity)

	r = Record{CvssV2BaseScore: f(6.8)}
	r.DeriveSeverity()
	assert.Equal(t, SeverityMedium, r.Severity)
}
