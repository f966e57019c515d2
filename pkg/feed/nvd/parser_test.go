package nvd

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"

	"github.com/bastionlabs/vulnsync/internal/bus"
	"github.com/bastionlabs/vulnsync/internal/bus/event"
	"github.com/bastionlabs/vulnsync/pkg/cwe"
	"github.com/bastionlabs/vulnsync/pkg/vuln"
)

type capturedEntry struct {
	record vuln.Record
	ranges []vuln.Range
}

type capturingPublisher struct {
	events []partybus.Event
}

func (p *capturingPublisher) Publish(e partybus.Event) {
	p.events = append(p.events, e)
}

func parseFixture(t *testing.T, opts ...Option) ([]capturedEntry, *capturingPublisher) {
	t.Helper()

	publisher := &capturingPublisher{}
	bus.SetPublisher(publisher)
	t.Cleanup(func() { bus.SetPublisher(nil) })

	f, err := os.Open("test-fixtures/feed.json")
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	var entries []capturedEntry
	parser := NewParser(cwe.NewDictionaryResolver(), opts...)
	err = parser.Parse(f, func(record vuln.Record, ranges []vuln.Range) error {
		entries = append(entries, capturedEntry{record: record, ranges: ranges})
		return nil
	})
	require.NoError(t, err)
	return entries, publisher
}

func TestParser_Parse(t *testing.T) {
	entries, publisher := parseFixture(t)
	require.Len(t, entries, 2)

	first := entries[0].record
	assert.Equal(t, vuln.SourceNVD, first.Source)
	assert.Equal(t, "CVE-2021-44228", first.ID)

	// only English variants, joined by a blank line, original order
	assert.Equal(t,
		"Apache Log4j2 JNDI features used in configuration do not protect against attacker controlled LDAP endpoints."+
			"\n\nFrom version 2.16.0, this functionality has been completely removed.",
		first.Description)

	// the unresolvable "NVD-CWE-noinfo" entry is omitted
	require.Len(t, first.Cwes, 1)
	assert.Equal(t, 502, first.Cwes[0].ID)

	// one bullet per unique URL, no trailing separator
	assert.Equal(t,
		"* [https://logging.apache.org/log4j/2.x/security.html](https://logging.apache.org/log4j/2.x/security.html)\n"+
			"* [https://www.cisa.gov/uscert/apache-log4j-vulnerability-guidance](https://www.cisa.gov/uscert/apache-log4j-vulnerability-guidance)",
		first.References)

	// vectors are canonical; scores are the feed's, not recomputed
	assert.Equal(t, "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:C/C:H/I:H/A:H", first.CvssV3Vector)
	require.NotNil(t, first.CvssV3BaseScore)
	assert.Equal(t, 10.0, *first.CvssV3BaseScore)
	require.NotNil(t, first.CvssV3ExploitabilityScore)
	assert.Equal(t, 3.9, *first.CvssV3ExploitabilityScore)
	require.NotNil(t, first.CvssV2BaseScore)
	assert.Equal(t, 9.3, *first.CvssV2BaseScore)
	assert.Equal(t, vuln.SeverityCritical, first.Severity)

	require.NotNil(t, first.Published)
	assert.True(t, first.Published.Equal(time.Date(2021, 12, 10, 10, 15, 0, 0, time.UTC)))
	require.NotNil(t, first.Modified)

	// the AND node mixes an OS child with an application child: only the application
	// range survives
	require.Len(t, entries[0].ranges, 1)
	assert.Equal(t, vuln.PartApplication, entries[0].ranges[0].Part)
	assert.Equal(t, "log4j", entries[0].ranges[0].Product)
	assert.Equal(t, "2.0.1", entries[0].ranges[0].VersionStartIncluding)
	assert.Equal(t, "2.15.0", entries[0].ranges[0].VersionEndExcluding)

	second := entries[1].record
	assert.Equal(t, "CVE-2020-0001", second.ID)
	assert.Equal(t, vuln.SeverityUnassigned, second.Severity)
	assert.Nil(t, second.Published, "malformed date leaves the field unset")
	assert.Nil(t, second.Modified)

	// the OR node passes both parts through; the duplicate application match collapses
	require.Len(t, entries[1].ranges, 2)

	// a single commit signal for the whole document, not one per entry
	require.Len(t, publisher.events, 1)
	assert.Equal(t, event.IndexCommit, publisher.events[0].Type)
}

func TestParser_Parse_Monitor(t *testing.T) {
	monitor := &progress.Manual{}
	entries, _ := parseFixture(t, WithMonitor(monitor))
	assert.Equal(t, int64(len(entries)), monitor.Current())
}

func TestParser_Parse_Gzipped(t *testing.T) {
	raw, err := os.ReadFile("test-fixtures/feed.json")
	require.NoError(t, err)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err = gz.Write(raw)
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	var count int
	parser := NewParser(cwe.NewDictionaryResolver())
	err = parser.Parse(&buf, func(vuln.Record, []vuln.Range) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestParser_Parse_MalformedDocument(t *testing.T) {
	parser := NewParser(cwe.NewDictionaryResolver())

	err := parser.Parse(strings.NewReader(`["not", "a", "feed"]`), func(vuln.Record, []vuln.Range) error {
		t.Fatal("sink must not be called for a malformed document")
		return nil
	})
	assert.ErrorContains(t, err, "malformed feed document")
}

func TestParser_Parse_SkipsNestedMetadata(t *testing.T) {
	// metadata fields of any shape may surround the entry array
	document := `{
		"CVE_data_type": "CVE",
		"CVE_data_extras": {"nested": {"deep": [1, 2, {"x": null}]}, "list": ["a", "b"]},
		"CVE_Items": [
			{"cve": {"CVE_data_meta": {"ID": "CVE-2024-0001"}}}
		],
		"CVE_data_trailer": [{"also": "skipped"}]
	}`

	var ids []string
	parser := NewParser(cwe.NewDictionaryResolver())
	err := parser.Parse(strings.NewReader(document), func(record vuln.Record, _ []vuln.Range) error {
		ids = append(ids, record.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"CVE-2024-0001"}, ids)
}

func TestParser_Parse_SinkFailureAbortsDocument(t *testing.T) {
	f, err := os.Open("test-fixtures/feed.json")
	require.NoError(t, err)
	defer f.Close()

	boom := errors.New("disk full")
	var calls int
	parser := NewParser(cwe.NewDictionaryResolver())
	err = parser.Parse(f, func(vuln.Record, []vuln.Range) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
