package cache

import (
	"fmt"
	"time"

	"github.com/jinzhu/copier"

	"github.com/bastionlabs/vulnsync/internal/log"
	"github.com/bastionlabs/vulnsync/pkg/analysis"
	"github.com/bastionlabs/vulnsync/pkg/component"
	"github.com/bastionlabs/vulnsync/pkg/notification"
	"github.com/bastionlabs/vulnsync/pkg/store"
	"github.com/bastionlabs/vulnsync/pkg/vuln"
)

const DefaultValidity = 12 * time.Hour

// Gate decides whether a component needs a live analysis round-trip or can be served
// from the results of a previous one. The cache never blocks analysis: any read failure
// is treated as a miss.
type Gate struct {
	store     store.Store
	evaluator notification.Evaluator
	validity  time.Duration
	now       func() time.Time
}

// NewGate wraps the store with a freshness window. A zero validity selects the default.
// The evaluator runs for every association restored from cache, the same as on the live
// path.
func NewGate(s store.Store, evaluator notification.Evaluator, validity time.Duration) *Gate {
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Gate{
		store:     s,
		evaluator: evaluator,
		validity:  validity,
		now:       time.Now,
	}
}

// IsCurrent reports whether a result for (source, target, key) exists and is still
// inside the freshness window. Absence and read errors both read as stale.
func (g *Gate) IsCurrent(source vuln.Source, target, key string) bool {
	entry, err := g.store.GetCacheEntry(source, target, key)
	if err != nil {
		log.WithFields("source", source, "key", key, "error", err).Warn("unable to read analysis cache, treating as stale")
		return false
	}
	if entry == nil {
		return false
	}
	return g.now().Sub(entry.LastChecked) < g.validity
}

// ApplyFromCache reconstructs the previous analysis outcome for the subject without a
// network call: each cached vulnerability ref is resolved against the canonical store,
// cloned onto the subject, and re-associated.
func (g *Gate) ApplyFromCache(subject *component.Component, source vuln.Source, target, key, analyzer string, level analysis.Level) error {
	entry, err := g.store.GetCacheEntry(source, target, key)
	if err != nil {
		return fmt.Errorf("unable to read analysis cache for %q: %w", key, err)
	}
	if entry == nil {
		return nil
	}

	for _, ref := range entry.VulnRefs {
		record, err := g.store.GetVulnerability(ref.Source, ref.ID)
		if err != nil {
			return fmt.Errorf("unable to resolve cached vulnerability %s %s: %w", ref.Source, ref.ID, err)
		}
		if record == nil {
			log.WithFields("source", ref.Source, "id", ref.ID).Debug("cached vulnerability ref no longer resolves, skipping")
			continue
		}

		var clone vuln.Record
		if err := copier.Copy(&clone, record); err != nil {
			return fmt.Errorf("unable to clone cached vulnerability %s %s: %w", ref.Source, ref.ID, err)
		}
		subject.AddVulnerability(clone)

		if g.evaluator != nil {
			g.evaluator.Evaluate(*subject, clone, analyzer, level)
		}

		if err := g.store.AddAssociation(store.Association{
			ComponentID: subject.ID,
			Source:      ref.Source,
			VulnID:      ref.ID,
			Analyzer:    analyzer,
		}); err != nil {
			return fmt.Errorf("unable to restore association for %s: %w", subject.ID, err)
		}
	}
	return nil
}

// RecordResult creates or refreshes the cache entry after a live analysis.
func (g *Gate) RecordResult(source vuln.Source, target, key string, refs []store.VulnRef) error {
	return g.store.PutCacheEntry(store.CacheEntry{
		Source:      source,
		Target:      target,
		Key:         key,
		LastChecked: g.now(),
		VulnRefs:    refs,
	})
}
