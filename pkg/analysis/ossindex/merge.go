package ossindex

import (
	"fmt"
	"strings"

	"github.com/scylladb/go-set/strset"

	"github.com/bastionlabs/vulnsync/internal/log"
	"github.com/bastionlabs/vulnsync/pkg/analysis"
	"github.com/bastionlabs/vulnsync/pkg/cache"
	"github.com/bastionlabs/vulnsync/pkg/component"
	"github.com/bastionlabs/vulnsync/pkg/cwe"
	"github.com/bastionlabs/vulnsync/pkg/notification"
	"github.com/bastionlabs/vulnsync/pkg/store"
	"github.com/bastionlabs/vulnsync/pkg/vuln"
)

// Merger reconciles component reports back into the canonical store: it matches report
// entries to scanned components, resolves or synthesizes canonical records, records
// associations, and refreshes the cache.
type Merger struct {
	store            store.Store
	gate             *cache.Gate
	resolver         cwe.Resolver
	evaluator        notification.Evaluator
	target           string
	aliasSyncEnabled bool
}

func NewMerger(s store.Store, gate *cache.Gate, resolver cwe.Resolver, evaluator notification.Evaluator, target string, aliasSyncEnabled bool) *Merger {
	return &Merger{
		store:            s,
		gate:             gate,
		resolver:         resolver,
		evaluator:        evaluator,
		target:           target,
		aliasSyncEnabled: aliasSyncEnabled,
	}
}

// Merge processes one page's reports against the page's components. Unmatched report
// entries are skipped; a matched component that no longer exists in the store is skipped
// silently (it may have been removed by another session since scanning).
func (m *Merger) Merge(reports []ComponentReport, batch []component.Component, level analysis.Level) error {
	for _, report := range reports {
		for _, c := range batch {
			if !coordinatesMatch(report.Coordinates, c) {
				continue
			}

			subject, err := m.store.GetComponent(c.ID)
			if err != nil {
				return fmt.Errorf("unable to re-fetch component %s: %w", c.ID, err)
			}
			if subject == nil {
				log.WithFields("component", c.ID).Debug("component no longer exists, skipping report entry")
				continue
			}

			if err := m.mergeFindings(report, subject, level); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Merger) mergeFindings(report ComponentReport, subject *component.Component, level analysis.Level) error {
	var refs []store.VulnRef

	for _, finding := range report.Vulnerabilities {
		record, err := m.resolveOrSynthesize(finding)
		if err != nil {
			return err
		}
		if record == nil {
			log.WithFields("component", subject.ID, "finding", finding.ID).Warn("report finding carries no usable identifier, skipping")
			continue
		}

		m.evaluator.Evaluate(*subject, *record, identity, level)

		if err := m.store.AddAssociation(store.Association{
			ComponentID: subject.ID,
			Source:      record.Source,
			VulnID:      record.ID,
			Analyzer:    identity,
			Reference:   finding.ID,
		}); err != nil {
			return fmt.Errorf("unable to associate %s with %s %s: %w", subject.ID, record.Source, record.ID, err)
		}
		subject.AddVulnerability(*record)
		refs = append(refs, store.VulnRef{Source: record.Source, ID: record.ID})

		// the CVE field is known to occasionally carry non-CVE identifiers upstream,
		// hence the prefix guard
		if m.aliasSyncEnabled && finding.ID != "" {
			alias := vuln.Alias{OssIndexID: finding.ID, CveID: finding.Cve}
			if alias.IsValid() {
				if err := m.store.SynchronizeAlias(alias); err != nil {
					return fmt.Errorf("unable to synchronize alias %s: %w", finding.ID, err)
				}
			}
		}
	}

	key, err := component.MinimizeCoordinateString(subject.Purl)
	if err != nil {
		log.WithFields("component", subject.ID, "purl", subject.Purl, "error", err).Warn("malformed coordinate, skipping analysis cache refresh")
		return nil
	}
	if err := m.gate.RecordResult(vuln.SourceOSSIndex, m.target, key, refs); err != nil {
		log.WithFields("component", subject.ID, "error", err).Warn("unable to refresh analysis cache")
	}
	return nil
}

// resolveOrSynthesize returns the canonical record for a finding, creating one when the
// store has none. A finding with a recognized CVE id is canonicalized under the NVD
// source; otherwise the service's own id is canonical and the record carries the
// service-supplied title.
func (m *Merger) resolveOrSynthesize(finding ReportVulnerability) (*vuln.Record, error) {
	source, id := vuln.SourceNVD, finding.Cve
	if !strings.HasPrefix(finding.Cve, "CVE-") {
		source, id = vuln.SourceOSSIndex, finding.ID
	}
	if id == "" {
		return nil, nil
	}

	existing, err := m.store.GetVulnerability(source, id)
	if err != nil {
		return nil, fmt.Errorf("unable to look up %s %s: %w", source, id, err)
	}
	if existing != nil {
		return existing, nil
	}

	record := m.synthesize(finding, source, id)
	if err := m.store.CreateVulnerability(&record); err != nil {
		return nil, fmt.Errorf("unable to persist synthesized record %s %s: %w", source, id, err)
	}
	return &record, nil
}

// synthesize builds a record from a report finding. Severity derivation is shared with
// feed ingestion so both paths score identically.
func (m *Merger) synthesize(finding ReportVulnerability, source vuln.Source, id string) vuln.Record {
	record := vuln.Record{
		Source:      source,
		ID:          id,
		Description: finding.Description,
	}
	if source != vuln.SourceNVD {
		record.Title = finding.Title
	}

	if finding.Cwe != "" {
		if weakness := m.resolver.Lookup(finding.Cwe); weakness != nil {
			record.AddCwe(*weakness)
		} else {
			log.WithFields("id", id, "cwe", finding.Cwe).Warn("unresolvable CWE identifier, omitting")
		}
	}

	record.References = markdownReferences(finding)

	if finding.CvssVector != "" {
		if err := record.ApplyVector(finding.CvssVector); err != nil {
			log.WithFields("id", id, "error", err).Warn("skipping malformed CVSS vector")
		}
	}

	record.DeriveSeverity()
	return record
}

func markdownReferences(finding ReportVulnerability) string {
	seen := strset.New()
	var lines []string
	add := func(url string) {
		if url == "" || seen.Has(url) {
			return
		}
		seen.Add(url)
		lines = append(lines, fmt.Sprintf("* [%s](%s)", url, url))
	}

	add(finding.Reference)
	for _, url := range finding.ExternalReferences {
		add(url)
	}
	return strings.Join(lines, "\n")
}

// coordinatesMatch compares a report entry's coordinate against a scanned component's
// normalized coordinate, falling back to a legacy-coordinate upgrade when the exact
// comparison misses.
func coordinatesMatch(reported string, c component.Component) bool {
	key, err := component.MinimizeCoordinateString(c.Purl)
	if err != nil {
		return false
	}
	if reported == key {
		return true
	}

	upgraded, err := component.UpgradeLegacyCoordinate(reported)
	if err != nil {
		return false
	}
	return component.MinimizeCoordinate(upgraded) == key
}
