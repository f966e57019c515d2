package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bastionlabs/vulnsync/pkg/component"
	"github.com/bastionlabs/vulnsync/pkg/store"
	"github.com/bastionlabs/vulnsync/pkg/vuln"
)

// Store is the sqlite-backed persistence collaborator.
type Store struct {
	db *gorm.DB
}

// CleanupFn closes the underlying database handle.
type CleanupFn func() error

// NewStore opens (or creates) the database at the given path and migrates the schema.
// When overwrite is set any existing database file is removed first.
func NewStore(dbFilePath string, overwrite bool) (*Store, CleanupFn, error) {
	if overwrite {
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("unable to remove existing DB file: %w", err)
		}
	}

	if dir := filepath.Dir(dbFilePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("unable to create DB parent directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open DB: %w", err)
	}

	cleanup := func() error {
		var errs error
		sqlDB, err := db.DB()
		if err != nil {
			errs = multierror.Append(errs, err)
		} else if err := sqlDB.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
		return errs
	}

	if err := db.AutoMigrate(
		&vulnerabilityModel{},
		&applicabilityModel{},
		&aliasModel{},
		&componentModel{},
		&associationModel{},
		&cacheEntryModel{},
	); err != nil {
		return nil, nil, multierror.Append(fmt.Errorf("unable to migrate schema: %w", err), cleanup())
	}

	return &Store{db: db}, cleanup, nil
}

func (s *Store) GetVulnerability(source vuln.Source, id string) (*vuln.Record, error) {
	var models []vulnerabilityModel
	result := s.db.Where("source = ? AND vuln_id = ?", source.String(), id).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	if len(models) == 0 {
		return nil, nil
	}

	record, err := models[0].Inflate()
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) CreateVulnerability(record *vuln.Record) error {
	m, err := newVulnerabilityModel(*record)
	if err != nil {
		return err
	}
	if result := s.db.Create(&m); result.Error != nil {
		return fmt.Errorf("unable to create vulnerability record %s %s: %w", record.Source, record.ID, result.Error)
	}
	return nil
}

func (s *Store) SyncVulnerability(record vuln.Record, ranges []vuln.Range) error {
	m, err := newVulnerabilityModel(record)
	if err != nil {
		return err
	}

	ranges = vuln.DedupeRanges(ranges)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&m); result.Error != nil {
			return fmt.Errorf("unable to upsert vulnerability record %s %s: %w", record.Source, record.ID, result.Error)
		}

		if result := tx.Where("source = ? AND vuln_id = ?", record.Source.String(), record.ID).Delete(&applicabilityModel{}); result.Error != nil {
			return fmt.Errorf("unable to clear applicability ranges for %s %s: %w", record.Source, record.ID, result.Error)
		}

		for _, r := range ranges {
			rm := newApplicabilityModel(record.Source, record.ID, r)
			if result := tx.Create(&rm); result.Error != nil {
				return fmt.Errorf("unable to store applicability range for %s %s: %w", record.Source, record.ID, result.Error)
			}
		}
		return nil
	})
}

func (s *Store) GetApplicability(source vuln.Source, id string) ([]vuln.Range, error) {
	var models []applicabilityModel
	result := s.db.Where("source = ? AND vuln_id = ?", source.String(), id).Order("id").Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	var ranges []vuln.Range
	for _, m := range models {
		ranges = append(ranges, m.Inflate())
	}
	return ranges, nil
}

func (s *Store) SynchronizeAlias(alias vuln.Alias) error {
	m := aliasModel{OssIndexID: alias.OssIndexID, CveID: alias.CveID}
	if result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&m); result.Error != nil {
		return fmt.Errorf("unable to store alias %s -> %s: %w", alias.OssIndexID, alias.CveID, result.Error)
	}
	return nil
}

func (s *Store) GetAliases(ossIndexID string) ([]vuln.Alias, error) {
	var models []aliasModel
	result := s.db.Where("oss_index_id = ?", ossIndexID).Order("cve_id").Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	var aliases []vuln.Alias
	for _, m := range models {
		aliases = append(aliases, vuln.Alias{OssIndexID: m.OssIndexID, CveID: m.CveID})
	}
	return aliases, nil
}

func (s *Store) GetComponent(id uuid.UUID) (*component.Component, error) {
	var models []componentModel
	result := s.db.Where("id = ?", id.String()).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	if len(models) == 0 {
		return nil, nil
	}

	c, err := models[0].Inflate()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) AddComponent(c component.Component) error {
	m := newComponentModel(c)
	if result := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&m); result.Error != nil {
		return fmt.Errorf("unable to store component %s: %w", c.ID, result.Error)
	}
	return nil
}

func (s *Store) AddAssociation(a store.Association) error {
	m := newAssociationModel(a)
	if result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&m); result.Error != nil {
		return fmt.Errorf("unable to store association %s %s %s: %w", a.ComponentID, a.Source, a.VulnID, result.Error)
	}
	return nil
}

func (s *Store) GetAssociations(componentID uuid.UUID) ([]store.Association, error) {
	var models []associationModel
	result := s.db.Where("component_id = ?", componentID.String()).Order("id").Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	var associations []store.Association
	for _, m := range models {
		a, err := m.Inflate()
		if err != nil {
			return nil, err
		}
		associations = append(associations, a)
	}
	return associations, nil
}

func (s *Store) GetCacheEntry(source vuln.Source, target, key string) (*store.CacheEntry, error) {
	var models []cacheEntryModel
	result := s.db.Where("source = ? AND target = ? AND subject_key = ?", source.String(), target, key).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	if len(models) == 0 {
		return nil, nil
	}

	entry, err := models[0].Inflate()
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Store) PutCacheEntry(entry store.CacheEntry) error {
	m, err := newCacheEntryModel(entry)
	if err != nil {
		return err
	}
	if result := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&m); result.Error != nil {
		return fmt.Errorf("unable to store cache entry %s/%s: %w", entry.Source, entry.Target, result.Error)
	}
	return nil
}

func (s *Store) Stats() (store.Stats, error) {
	var stats store.Stats
	for _, c := range []struct {
		model any
		count *int64
	}{
		{&vulnerabilityModel{}, &stats.Vulnerabilities},
		{&applicabilityModel{}, &stats.Ranges},
		{&componentModel{}, &stats.Components},
		{&associationModel{}, &stats.Associations},
		{&aliasModel{}, &stats.Aliases},
		{&cacheEntryModel{}, &stats.CacheEntries},
	} {
		if result := s.db.Model(c.model).Count(c.count); result.Error != nil {
			return store.Stats{}, result.Error
		}
	}
	return stats, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
