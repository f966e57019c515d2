package ossindex

import (
	"fmt"
	"time"

	"github.com/bastionlabs/vulnsync/internal/log"
	"github.com/bastionlabs/vulnsync/internal/retry"
	"github.com/bastionlabs/vulnsync/pkg/analysis"
	"github.com/bastionlabs/vulnsync/pkg/cache"
	"github.com/bastionlabs/vulnsync/pkg/component"
	"github.com/bastionlabs/vulnsync/pkg/cwe"
	"github.com/bastionlabs/vulnsync/pkg/notification"
	"github.com/bastionlabs/vulnsync/pkg/store"
	"github.com/bastionlabs/vulnsync/pkg/vuln"
)

const (
	identity         = "OSSINDEX_ANALYZER"
	defaultBatchSize = 100
)

type Config struct {
	BaseURL   string
	UserAgent string
	Username  string
	Token     string

	BatchSize        int
	AliasSyncEnabled bool
	CacheValidity    time.Duration
	Retry            retry.Policy
}

// Analyzer analyzes package-coordinate components against the OSS Index
// component-report service.
type Analyzer struct {
	client    *Client
	gate      *cache.Gate
	merger    *Merger
	target    string
	batchSize int
}

func NewAnalyzer(cfg Config, s store.Store, resolver cwe.Resolver, evaluator notification.Evaluator) *Analyzer {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	gate := cache.NewGate(s, evaluator, cfg.CacheValidity)
	return &Analyzer{
		client: NewClient(ClientConfig{
			BaseURL:   cfg.BaseURL,
			UserAgent: cfg.UserAgent,
			Username:  cfg.Username,
			Token:     cfg.Token,
			Retry:     cfg.Retry,
		}),
		gate:      gate,
		merger:    NewMerger(s, gate, resolver, evaluator, cfg.BaseURL, cfg.AliasSyncEnabled),
		target:    cfg.BaseURL,
		batchSize: batchSize,
	}
}

func (a *Analyzer) Identity() string {
	return identity
}

// IsCapable requires a parseable package coordinate with both a name and a version.
func (a *Analyzer) IsCapable(c component.Component) bool {
	return c.HasMinimalCoordinate()
}

// ShouldAnalyze additionally excludes internal-only components, which are never
// submitted to external services.
func (a *Analyzer) ShouldAnalyze(c component.Component) bool {
	return !c.Internal && a.IsCapable(c)
}

// Analyze partitions the request's components into cache-current and stale, serves the
// current subset from cache, and pages the stale subset through the service. A page
// failure aborts the remaining pages of this invocation; pages already merged stay
// committed.
func (a *Analyzer) Analyze(request analysis.Request) error {
	var stale []component.Component

	for _, c := range request.Components {
		if !a.ShouldAnalyze(c) {
			continue
		}
		key, err := component.MinimizeCoordinateString(c.Purl)
		if err != nil {
			log.WithFields("component", c.ID, "purl", c.Purl, "error", err).Warn("malformed coordinate, skipping component")
			continue
		}

		if a.gate.IsCurrent(vuln.SourceOSSIndex, a.target, key) {
			if err := a.gate.ApplyFromCache(&c, vuln.SourceOSSIndex, a.target, key, identity, request.Level); err != nil {
				log.WithFields("component", c.ID, "error", err).Warn("cache apply failed, re-analyzing live")
				stale = append(stale, c)
			}
			continue
		}
		stale = append(stale, c)
	}

	for start := 0; start < len(stale); start += a.batchSize {
		end := start + a.batchSize
		if end > len(stale) {
			end = len(stale)
		}
		if err := a.analyzePage(stale[start:end], request.Level); err != nil {
			return fmt.Errorf("aborting analysis at page starting %d: %w", start, err)
		}
	}
	return nil
}

func (a *Analyzer) analyzePage(page []component.Component, level analysis.Level) error {
	coordinates := make([]string, 0, len(page))
	for _, c := range page {
		key, err := component.MinimizeCoordinateString(c.Purl)
		if err != nil {
			log.WithFields("component", c.ID, "purl", c.Purl, "error", err).Warn("malformed coordinate, skipping component")
			continue
		}
		coordinates = append(coordinates, key)
	}
	if len(coordinates) == 0 {
		return nil
	}

	log.WithFields("coordinates", len(coordinates)).Debug("submitting coordinate batch")
	reports, err := a.client.SubmitCoordinates(coordinates)
	if err != nil {
		return err
	}

	return a.merger.Merge(reports, page, level)
}
