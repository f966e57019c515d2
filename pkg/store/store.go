package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/bastionlabs/vulnsync/pkg/component"
	"github.com/bastionlabs/vulnsync/pkg/vuln"
)

// Association links a scanned component to a canonical vulnerability record, tagged with
// the analyzer that produced it. The (component, vulnerability, analyzer) triple is
// never duplicated.
type Association struct {
	ComponentID uuid.UUID
	Source      vuln.Source
	VulnID      string
	Analyzer    string

	// Reference carries source-specific reference text (e.g. the service's own id).
	Reference string
}

// CacheEntry records that a subject was analyzed against a target service at some point
// in time. Entries are created or refreshed after every live analysis and read before
// every analysis attempt; expiry/deletion is owned by external retention policy.
type CacheEntry struct {
	Source      vuln.Source
	Target      string
	Key         string
	LastChecked time.Time

	// VulnRefs are the (source, id) pairs recorded by the last live analysis, used to
	// reconstruct associations without a network call.
	VulnRefs []VulnRef
}

// VulnRef is a pointer to a canonical vulnerability record.
type VulnRef struct {
	Source vuln.Source `json:"source"`
	ID     string      `json:"id"`
}

// Stats summarizes the contents of the canonical store.
type Stats struct {
	Vulnerabilities int64
	Ranges          int64
	Components      int64
	Associations    int64
	Aliases         int64
	CacheEntries    int64
}

// Store is the persistence/query collaborator for the ingestion and analysis pipelines.
type Store interface {
	// GetVulnerability returns the record for (source, id), or nil when absent.
	GetVulnerability(source vuln.Source, id string) (*vuln.Record, error)

	// CreateVulnerability persists a fully constructed record. Creating a record that
	// already exists for (source, id) is an error; use SyncVulnerability for upserts.
	CreateVulnerability(record *vuln.Record) error

	// SyncVulnerability idempotently upserts a record together with its applicability
	// ranges, replacing any previously stored ranges for the same (source, id).
	SyncVulnerability(record vuln.Record, ranges []vuln.Range) error

	// GetApplicability returns the stored ranges for a record.
	GetApplicability(source vuln.Source, id string) ([]vuln.Range, error)

	// SynchronizeAlias additively records an alias; applying the same alias twice is a
	// no-op.
	SynchronizeAlias(alias vuln.Alias) error

	// GetAliases returns all aliases recorded for a service-specific identifier.
	GetAliases(ossIndexID string) ([]vuln.Alias, error)

	// GetComponent re-fetches a component by identity, returning nil when it no longer
	// exists.
	GetComponent(id uuid.UUID) (*component.Component, error)

	AddComponent(c component.Component) error

	// AddAssociation records a component-vulnerability association; duplicates of the
	// same (component, vulnerability, analyzer) triple are ignored.
	AddAssociation(a Association) error

	GetAssociations(componentID uuid.UUID) ([]Association, error)

	// GetCacheEntry returns the cache entry for (source, target, key), or nil.
	GetCacheEntry(source vuln.Source, target, key string) (*CacheEntry, error)

	// PutCacheEntry creates or refreshes a cache entry (last write wins).
	PutCacheEntry(entry CacheEntry) error

	Stats() (Stats, error)

	Close() error
}
