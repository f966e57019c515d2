package vuln

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCvssV3_RenormalizesVectorKeepsScores(t *testing.T) {
	var r Record

	// non-canonical metric ordering normalizes, supplied scores survive untouched
	require.NoError(t, r.ApplyCvssV3("CVSS:3.1/AC:L/AV:N/PR:N/UI:N/S:C/C:H/I:H/A:H", f(10.0), f(3.9), f(6.0)))

	assert.Equal(t, "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:C/C:H/I:H/A:H", r.CvssV3Vector)
	assert.Equal(t, 10.0, *r.CvssV3BaseScore)
	assert.Equal(t, 3.9, *r.CvssV3ExploitabilityScore)
	assert.Equal(t, 6.0, *r.CvssV3ImpactScore)
}

func TestApplyCvssV3_Version30(t *testing.T) {
	var r Record

	require.NoError(t, r.ApplyCvssV3("CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:N/A:N", f(7.5), nil, nil))
	assert.Equal(t, "CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:N/A:N", r.CvssV3Vector)
}

func TestApplyCvssV2_KeepsFeedScores(t *testing.T) {
	var r Record

	// the feed-provided base score is retained even where recomputation would disagree
	require.NoError(t, r.ApplyCvssV2("AV:N/AC:M/Au:N/C:C/I:C/A:C", f(9.3), f(8.6), f(10.0)))

	assert.Equal(t, "AV:N/AC:M/Au:N/C:C/I:C/A:C", r.CvssV2Vector)
	assert.Equal(t, 9.3, *r.CvssV2BaseScore)
	assert.Equal(t, 8.6, *r.CvssV2ExploitabilityScore)
	assert.Equal(t, 10.0, *r.CvssV2ImpactScore)
}

func TestApplyCvss_MalformedVector(t *testing.T) {
	var r Record

	assert.Error(t, r.ApplyCvssV3("CVSS:3.1/not-a-vector", f(1), nil, nil))
	assert.Error(t, r.ApplyCvssV3("CVSS:4.0/AV:N", f(1), nil, nil))
	assert.Error(t, r.ApplyCvssV2("garbage", f(1), nil, nil))
	assert.Empty(t, r.CvssV3Vector)
	assert.Empty(t, r.CvssV2Vector)
}

func TestApplyVector_DerivesScoreByVersion(t *testing.T) {
	var r3 Record
	require.NoError(t, r3.ApplyVector("CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"))
	require.NotNil(t, r3.CvssV3BaseScore)
	assert.InDelta(t, 9.8, *r3.CvssV3BaseScore, 0.01)
	assert.Nil(t, r3.CvssV2BaseScore)

	var r2 Record
	require.NoError(t, r2.ApplyVector("AV:N/AC:L/Au:N/C:P/I:P/A:P"))
	require.NotNil(t, r2.CvssV2BaseScore)
	assert.InDelta(t, 7.5, *r2.CvssV2BaseScore, 0.01)
	assert.Nil(t, r2.CvssV3BaseScore)
}
