package nvd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/klauspost/compress/gzip"
	"github.com/scylladb/go-set/strset"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"
	"golang.org/x/text/language"

	"github.com/bastionlabs/vulnsync/internal/bus"
	"github.com/bastionlabs/vulnsync/internal/bus/event"
	"github.com/bastionlabs/vulnsync/internal/log"
	"github.com/bastionlabs/vulnsync/pkg/cwe"
	"github.com/bastionlabs/vulnsync/pkg/vuln"
)

const dateLayout = "2006-01-02T15:04Z0700"

// Sink receives one fully constructed record plus its deduplicated applicability ranges
// per feed entry, and owns persistence.
type Sink func(record vuln.Record, ranges []vuln.Range) error

// Parser streams a feed document entry-by-entry: only one item is materialized at a
// time, so arbitrarily large documents parse in bounded memory.
type Parser struct {
	resolver cwe.Resolver
	monitor  *progress.Manual
}

type Option func(*Parser)

// WithMonitor attaches a progress monitor that is incremented per processed entry.
func WithMonitor(m *progress.Manual) Option {
	return func(p *Parser) {
		p.monitor = m
	}
}

func NewParser(resolver cwe.Resolver, opts ...Option) *Parser {
	p := &Parser{
		resolver: resolver,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse consumes a feed document (optionally gzip-compressed), invoking the sink exactly
// once per entry. After the document is fully consumed a single index-commit event is
// published. A sink failure or a malformed top-level structure aborts the document.
func (p *Parser) Parse(reader io.Reader, sink Sink) error {
	buffered := bufio.NewReader(reader)

	if compressed, err := isGzipped(buffered); err != nil {
		return fmt.Errorf("unable to read feed document: %w", err)
	} else if compressed {
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			return fmt.Errorf("unable to decompress feed document: %w", err)
		}
		defer gz.Close()
		return p.parseDocument(gz, sink)
	}

	return p.parseDocument(buffered, sink)
}

func (p *Parser) parseDocument(reader io.Reader, sink Sink) error {
	dec := json.NewDecoder(reader)

	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("malformed feed document: %w", err)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("malformed feed document: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("malformed feed document: expected object key, got %v", tok)
		}

		if key != "CVE_Items" {
			// top-level metadata fields are skipped token by token, never buffered
			if err := skipValue(dec); err != nil {
				return fmt.Errorf("malformed feed document: unable to skip field %q: %w", key, err)
			}
			continue
		}

		if err := p.parseItems(dec, sink); err != nil {
			return err
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return fmt.Errorf("malformed feed document: %w", err)
	}

	if p.monitor != nil {
		p.monitor.SetCompleted()
	}
	bus.Publish(partybus.Event{Type: event.IndexCommit})
	return nil
}

func (p *Parser) parseItems(dec *json.Decoder, sink Sink) error {
	if err := expectDelim(dec, '['); err != nil {
		return fmt.Errorf("malformed feed document: %w", err)
	}

	for dec.More() {
		var item CveItem
		if err := dec.Decode(&item); err != nil {
			return fmt.Errorf("malformed feed entry: %w", err)
		}

		if item.IsEmpty() {
			log.Warn("skipping feed entry without an identifier")
			continue
		}

		if err := sink(p.buildRecord(item), reconcileConfigurations(item.Cve.Meta.ID, item.Configurations)); err != nil {
			return fmt.Errorf("sink rejected entry %s: %w", item.Cve.Meta.ID, err)
		}

		if p.monitor != nil {
			p.monitor.Increment()
		}
	}

	return expectDelim(dec, ']')
}

// buildRecord extracts the canonical record from a single feed entry. Field-scoped parse
// failures are logged and the field left unset; they never abort the entry.
func (p *Parser) buildRecord(item CveItem) vuln.Record {
	id := item.Cve.Meta.ID
	record := vuln.Record{
		Source: vuln.SourceNVD,
		ID:     id,
	}

	record.Published = parseDate(id, "publishedDate", item.PublishedDate)
	record.Modified = parseDate(id, "lastModifiedDate", item.LastModifiedDate)
	record.Description = englishDescription(item.Cve.Description)
	record.References = markdownReferences(item.Cve.References)

	for _, data := range item.Cve.ProblemType.Data {
		for _, desc := range data.Description {
			if !isEnglish(desc.Lang) {
				continue
			}
			weakness := p.resolver.Lookup(desc.Value)
			if weakness == nil {
				log.WithFields("cve", id, "cwe", desc.Value).Warn("unresolvable CWE identifier, omitting")
				continue
			}
			record.AddCwe(*weakness)
		}
	}

	if m := item.Impact.BaseMetricV2; m != nil && m.CvssV2.VectorString != "" {
		if err := record.ApplyCvssV2(m.CvssV2.VectorString, m.CvssV2.BaseScore, m.ExploitabilityScore, m.ImpactScore); err != nil {
			log.WithFields("cve", id, "error", err).Warn("skipping malformed CVSSv2 metric")
		}
	}
	if m := item.Impact.BaseMetricV3; m != nil && m.CvssV3.VectorString != "" {
		if err := record.ApplyCvssV3(m.CvssV3.VectorString, m.CvssV3.BaseScore, m.ExploitabilityScore, m.ImpactScore); err != nil {
			log.WithFields("cve", id, "error", err).Warn("skipping malformed CVSSv3 metric")
		}
	}

	record.DeriveSeverity()
	return record
}

// englishDescription joins the English-language description variants in original order,
// separated by a blank line.
func englishDescription(d Description) string {
	var values []string
	for _, entry := range d.Data {
		if isEnglish(entry.Lang) {
			values = append(values, entry.Value)
		}
	}
	return strings.Join(values, "\n\n")
}

// markdownReferences renders a bullet list of links, one per unique URL, in
// first-seen order.
func markdownReferences(refs References) string {
	seen := strset.New()
	var lines []string
	for _, ref := range refs.Data {
		if ref.URL == "" || seen.Has(ref.URL) {
			continue
		}
		seen.Add(ref.URL)
		lines = append(lines, fmt.Sprintf("* [%s](%s)", ref.URL, ref.URL))
	}
	return strings.Join(lines, "\n")
}

func parseDate(id, field, value string) *time.Time {
	if value == "" {
		return nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return &t
	}
	t, err := dateparse.ParseAny(value)
	if err != nil {
		log.WithFields("cve", id, "field", field, "value", value).Warn("unparseable date, leaving unset")
		return nil
	}
	return &t
}

func isEnglish(lang string) bool {
	tag, err := language.Parse(lang)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	englishBase, _ := language.English.Base()
	return base == englishBase
}

func isGzipped(r *bufio.Reader) (bool, error) {
	header, err := r.Peek(2)
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	return header[0] == 0x1f && header[1] == 0x8b, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// skipValue consumes exactly one JSON value from the decoder without materializing it.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); ok && (delim == '{' || delim == '[') {
		for dec.More() {
			if err := skipValue(dec); err != nil {
				return err
			}
		}
		// closing delimiter
		if _, err := dec.Token(); err != nil {
			return err
		}
	}
	return nil
}
