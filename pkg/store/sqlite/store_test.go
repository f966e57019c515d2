package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastionlabs/vulnsync/pkg/component"
	"github.com/bastionlabs/vulnsync/pkg/cwe"
	"github.com/bastionlabs/vulnsync/pkg/store"
	"github.com/bastionlabs/vulnsync/pkg/vuln"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, cleanup, err := NewStore(filepath.Join(t.TempDir(), "vulnsync.db"), true)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, cleanup())
	})
	return s
}

func float64Ref(f float64) *float64 {
	return &f
}

func TestStore_VulnerabilityRoundTrip(t *testing.T) {
	s := newTestStore(t)

	published := time.Date(2021, 12, 10, 10, 15, 0, 0, time.UTC)
	record := vuln.Record{
		Source:          vuln.SourceNVD,
		ID:              "CVE-2021-44228",
		Description:     "Apache Log4j2 JNDI features do not protect against attacker controlled LDAP endpoints.",
		Cwes:            []cwe.Weakness{{ID: 502, Name: "Deserialization of Untrusted Data"}},
		CvssV3Vector:    "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:C/C:H/I:H/A:H",
		CvssV3BaseScore: float64Ref(10.0),
		Severity:        vuln.SeverityCritical,
		References:      "* [https://logging.apache.org/log4j/2.x/security.html](https://logging.apache.org/log4j/2.x/security.html)",
		Published:       &published,
	}

	require.NoError(t, s.CreateVulnerability(&record))

	got, err := s.GetVulnerability(vuln.SourceNVD, "CVE-2021-44228")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Published)
	assert.True(t, got.Published.Equal(published))
	got.Published = record.Published // timezone representation may differ after storage
	assert.Equal(t, record, *got)

	// same (source, id) under a different source is a distinct record
	got, err = s.GetVulnerability(vuln.SourceOSSIndex, "CVE-2021-44228")
	require.NoError(t, err)
	assert.Nil(t, got)

	// creating the same record twice is an error
	assert.Error(t, s.CreateVulnerability(&record))
}

func TestStore_SyncVulnerability_ReplacesRanges(t *testing.T) {
	s := newTestStore(t)

	record := vuln.Record{
		Source:      vuln.SourceNVD,
		ID:          "CVE-2020-0001",
		Description: "first pass",
		Severity:    vuln.SeverityHigh,
	}
	ranges := []vuln.Range{
		{Cpe23: "cpe:2.3:a:acme:anvil:*:*:*:*:*:*:*:*", Part: vuln.PartApplication, Vendor: "acme", Product: "anvil", Version: "*", Vulnerable: true, VersionEndExcluding: "2.0"},
		// exact duplicate collapses on write
		{Cpe23: "cpe:2.3:a:acme:anvil:*:*:*:*:*:*:*:*", Part: vuln.PartApplication, Vendor: "acme", Product: "anvil", Version: "*", Vulnerable: true, VersionEndExcluding: "2.0"},
	}

	require.NoError(t, s.SyncVulnerability(record, ranges))

	got, err := s.GetApplicability(vuln.SourceNVD, "CVE-2020-0001")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2.0", got[0].VersionEndExcluding)

	// a re-sync with different ranges replaces the old set
	record.Description = "second pass"
	require.NoError(t, s.SyncVulnerability(record, []vuln.Range{
		{Cpe23: "cpe:2.3:a:acme:anvil:*:*:*:*:*:*:*:*", Part: vuln.PartApplication, Vendor: "acme", Product: "anvil", Version: "*", Vulnerable: true, VersionEndExcluding: "3.0"},
	}))

	got, err = s.GetApplicability(vuln.SourceNVD, "CVE-2020-0001")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "3.0", got[0].VersionEndExcluding)

	updated, err := s.GetVulnerability(vuln.SourceNVD, "CVE-2020-0001")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "second pass", updated.Description)
}

func TestStore_SynchronizeAlias_Idempotent(t *testing.T) {
	s := newTestStore(t)

	alias := vuln.Alias{OssIndexID: "sonatype-2021-0123", CveID: "CVE-2021-44228"}
	require.NoError(t, s.SynchronizeAlias(alias))
	require.NoError(t, s.SynchronizeAlias(alias))

	got, err := s.GetAliases("sonatype-2021-0123")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, alias, got[0])

	got, err = s.GetAliases("sonatype-2021-9999")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_ComponentRoundTrip(t *testing.T) {
	s := newTestStore(t)

	c := component.Component{
		ID:      uuid.New(),
		Name:    "commons-text",
		Group:   "org.apache.commons",
		Version: "1.8",
		Purl:    "pkg:maven/org.apache.commons/commons-text@1.8",
	}

	require.NoError(t, s.AddComponent(c))

	got, err := s.GetComponent(c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c, *got)

	got, err = s.GetComponent(uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_AddAssociation_DeduplicatesTriple(t *testing.T) {
	s := newTestStore(t)

	componentID := uuid.New()
	a := store.Association{
		ComponentID: componentID,
		Source:      vuln.SourceNVD,
		VulnID:      "CVE-2021-44228",
		Analyzer:    "OSSINDEX_ANALYZER",
		Reference:   "sonatype-2021-0123",
	}

	require.NoError(t, s.AddAssociation(a))
	require.NoError(t, s.AddAssociation(a))

	// a different analyzer for the same pair is a new association
	b := a
	b.Analyzer = "INTERNAL_ANALYZER"
	require.NoError(t, s.AddAssociation(b))

	got, err := s.GetAssociations(componentID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t)

	record := vuln.Record{Source: vuln.SourceNVD, ID: "CVE-2020-0001", Severity: vuln.SeverityLow}
	require.NoError(t, s.SyncVulnerability(record, []vuln.Range{
		{Cpe23: "cpe:2.3:a:acme:anvil:*:*:*:*:*:*:*:*", Part: vuln.PartApplication, Vendor: "acme", Product: "anvil", Vulnerable: true},
	}))
	require.NoError(t, s.AddComponent(component.Component{ID: uuid.New(), Name: "anvil", Version: "1.0", Purl: "pkg:generic/anvil@1.0"}))

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Vulnerabilities)
	assert.Equal(t, int64(1), stats.Ranges)
	assert.Equal(t, int64(1), stats.Components)
	assert.Zero(t, stats.Associations)
}

func TestStore_CacheEntry_LastWriteWins(t *testing.T) {
	s := newTestStore(t)

	entry := store.CacheEntry{
		Source:      vuln.SourceOSSIndex,
		Target:      "https://ossindex.sonatype.org",
		Key:         "pkg:npm/lodash@4.17.20",
		LastChecked: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		VulnRefs:    []store.VulnRef{{Source: vuln.SourceNVD, ID: "CVE-2021-23337"}},
	}

	require.NoError(t, s.PutCacheEntry(entry))

	got, err := s.GetCacheEntry(entry.Source, entry.Target, entry.Key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.VulnRefs, got.VulnRefs)

	// refreshing the same key overwrites the timestamp and refs
	entry.LastChecked = entry.LastChecked.Add(24 * time.Hour)
	entry.VulnRefs = nil
	require.NoError(t, s.PutCacheEntry(entry))

	got, err = s.GetCacheEntry(entry.Source, entry.Target, entry.Key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.LastChecked.Equal(entry.LastChecked))
	assert.Empty(t, got.VulnRefs)

	missing, err := s.GetCacheEntry(entry.Source, entry.Target, "pkg:npm/underscore@1.13.0")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
