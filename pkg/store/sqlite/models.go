package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bastionlabs/vulnsync/pkg/component"
	"github.com/bastionlabs/vulnsync/pkg/cwe"
	"github.com/bastionlabs/vulnsync/pkg/store"
	"github.com/bastionlabs/vulnsync/pkg/vuln"
)

type vulnerabilityModel struct {
	Source string `gorm:"primaryKey"`
	VulnID string `gorm:"primaryKey;column:vuln_id"`

	Title       string
	Description string
	Cwes        string

	CvssV2Vector              string
	CvssV2BaseScore           *float64
	CvssV2ExploitabilityScore *float64
	CvssV2ImpactScore         *float64

	CvssV3Vector              string
	CvssV3BaseScore           *float64
	CvssV3ExploitabilityScore *float64
	CvssV3ImpactScore         *float64

	RiskLikelihoodScore      *float64
	RiskTechnicalImpactScore *float64
	RiskBusinessImpactScore  *float64

	Severity   string
	References string

	Published *time.Time
	Modified  *time.Time
}

// applicabilityModel rows carry a storage-assigned id; range identity for comparison is
// the semantic fields only.
type applicabilityModel struct {
	ID     uint   `gorm:"primaryKey"`
	Source string `gorm:"index:applicability_vuln_idx"`
	VulnID string `gorm:"index:applicability_vuln_idx;column:vuln_id"`

	Cpe23   string
	Part    string
	Vendor  string
	Product string
	Version string
	Update_ string `gorm:"column:update_part"`

	VersionStartIncluding string
	VersionStartExcluding string
	VersionEndIncluding   string
	VersionEndExcluding   string

	Vulnerable bool
}

type aliasModel struct {
	OssIndexID string `gorm:"primaryKey;column:oss_index_id"`
	CveID      string `gorm:"primaryKey;column:cve_id"`
}

type componentModel struct {
	ID       string `gorm:"primaryKey"`
	Name     string
	Group    string `gorm:"column:component_group"`
	Version  string
	Purl     string
	Cpe      string
	Internal bool
}

type associationModel struct {
	ID          uint   `gorm:"primaryKey"`
	ComponentID string `gorm:"uniqueIndex:association_triple_idx"`
	Source      string `gorm:"uniqueIndex:association_triple_idx"`
	VulnID      string `gorm:"uniqueIndex:association_triple_idx;column:vuln_id"`
	Analyzer    string `gorm:"uniqueIndex:association_triple_idx"`
	Reference   string
}

type cacheEntryModel struct {
	Source      string `gorm:"primaryKey"`
	Target      string `gorm:"primaryKey"`
	SubjectKey  string `gorm:"primaryKey"`
	LastChecked time.Time
	VulnRefs    string
}

func (vulnerabilityModel) TableName() string { return "vulnerabilities" }
func (applicabilityModel) TableName() string { return "applicability_ranges" }
func (aliasModel) TableName() string         { return "vulnerability_aliases" }
func (componentModel) TableName() string     { return "components" }
func (associationModel) TableName() string   { return "associations" }
func (cacheEntryModel) TableName() string    { return "analysis_cache" }

func newVulnerabilityModel(record vuln.Record) (vulnerabilityModel, error) {
	cwes, err := json.Marshal(record.Cwes)
	if err != nil {
		return vulnerabilityModel{}, fmt.Errorf("unable to encode CWEs: %w", err)
	}

	return vulnerabilityModel{
		Source:                    record.Source.String(),
		VulnID:                    record.ID,
		Title:                     record.Title,
		Description:               record.Description,
		Cwes:                      string(cwes),
		CvssV2Vector:              record.CvssV2Vector,
		CvssV2BaseScore:           record.CvssV2BaseScore,
		CvssV2ExploitabilityScore: record.CvssV2ExploitabilityScore,
		CvssV2ImpactScore:         record.CvssV2ImpactScore,
		CvssV3Vector:              record.CvssV3Vector,
		CvssV3BaseScore:           record.CvssV3BaseScore,
		CvssV3ExploitabilityScore: record.CvssV3ExploitabilityScore,
		CvssV3ImpactScore:         record.CvssV3ImpactScore,
		RiskLikelihoodScore:       record.RiskLikelihoodScore,
		RiskTechnicalImpactScore:  record.RiskTechnicalImpactScore,
		RiskBusinessImpactScore:   record.RiskBusinessImpactScore,
		Severity:                  string(record.Severity),
		References:                record.References,
		Published:                 record.Published,
		Modified:                  record.Modified,
	}, nil
}

func (m vulnerabilityModel) Inflate() (vuln.Record, error) {
	var cwes []cwe.Weakness
	if m.Cwes != "" && m.Cwes != "null" {
		if err := json.Unmarshal([]byte(m.Cwes), &cwes); err != nil {
			return vuln.Record{}, fmt.Errorf("unable to decode CWEs for %s %s: %w", m.Source, m.VulnID, err)
		}
	}

	return vuln.Record{
		Source:                    vuln.Source(m.Source),
		ID:                        m.VulnID,
		Title:                     m.Title,
		Description:               m.Description,
		Cwes:                      cwes,
		CvssV2Vector:              m.CvssV2Vector,
		CvssV2BaseScore:           m.CvssV2BaseScore,
		CvssV2ExploitabilityScore: m.CvssV2ExploitabilityScore,
		CvssV2ImpactScore:         m.CvssV2ImpactScore,
		CvssV3Vector:              m.CvssV3Vector,
		CvssV3BaseScore:           m.CvssV3BaseScore,
		CvssV3ExploitabilityScore: m.CvssV3ExploitabilityScore,
		CvssV3ImpactScore:         m.CvssV3ImpactScore,
		RiskLikelihoodScore:       m.RiskLikelihoodScore,
		RiskTechnicalImpactScore:  m.RiskTechnicalImpactScore,
		RiskBusinessImpactScore:   m.RiskBusinessImpactScore,
		Severity:                  vuln.Severity(m.Severity),
		References:                m.References,
		Published:                 m.Published,
		Modified:                  m.Modified,
	}, nil
}

func newApplicabilityModel(source vuln.Source, vulnID string, r vuln.Range) applicabilityModel {
	return applicabilityModel{
		Source:                source.String(),
		VulnID:                vulnID,
		Cpe23:                 r.Cpe23,
		Part:                  string(r.Part),
		Vendor:                r.Vendor,
		Product:               r.Product,
		Version:               r.Version,
		Update_:               r.Update,
		VersionStartIncluding: r.VersionStartIncluding,
		VersionStartExcluding: r.VersionStartExcluding,
		VersionEndIncluding:   r.VersionEndIncluding,
		VersionEndExcluding:   r.VersionEndExcluding,
		Vulnerable:            r.Vulnerable,
	}
}

func (m applicabilityModel) Inflate() vuln.Range {
	return vuln.Range{
		Cpe23:                 m.Cpe23,
		Part:                  vuln.PlatformPart(m.Part),
		Vendor:                m.Vendor,
		Product:               m.Product,
		Version:               m.Version,
		Update:                m.Update_,
		VersionStartIncluding: m.VersionStartIncluding,
		VersionStartExcluding: m.VersionStartExcluding,
		VersionEndIncluding:   m.VersionEndIncluding,
		VersionEndExcluding:   m.VersionEndExcluding,
		Vulnerable:            m.Vulnerable,
	}
}

func newComponentModel(c component.Component) componentModel {
	return componentModel{
		ID:       c.ID.String(),
		Name:     c.Name,
		Group:    c.Group,
		Version:  c.Version,
		Purl:     c.Purl,
		Cpe:      c.Cpe,
		Internal: c.Internal,
	}
}

func (m componentModel) Inflate() (component.Component, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return component.Component{}, fmt.Errorf("invalid component id %q: %w", m.ID, err)
	}
	return component.Component{
		ID:       id,
		Name:     m.Name,
		Group:    m.Group,
		Version:  m.Version,
		Purl:     m.Purl,
		Cpe:      m.Cpe,
		Internal: m.Internal,
	}, nil
}

func newAssociationModel(a store.Association) associationModel {
	return associationModel{
		ComponentID: a.ComponentID.String(),
		Source:      a.Source.String(),
		VulnID:      a.VulnID,
		Analyzer:    a.Analyzer,
		Reference:   a.Reference,
	}
}

func (m associationModel) Inflate() (store.Association, error) {
	id, err := uuid.Parse(m.ComponentID)
	if err != nil {
		return store.Association{}, fmt.Errorf("invalid component id %q: %w", m.ComponentID, err)
	}
	return store.Association{
		ComponentID: id,
		Source:      vuln.Source(m.Source),
		VulnID:      m.VulnID,
		Analyzer:    m.Analyzer,
		Reference:   m.Reference,
	}, nil
}

func newCacheEntryModel(e store.CacheEntry) (cacheEntryModel, error) {
	refs, err := json.Marshal(e.VulnRefs)
	if err != nil {
		return cacheEntryModel{}, fmt.Errorf("unable to encode cached vulnerability refs: %w", err)
	}
	return cacheEntryModel{
		Source:      e.Source.String(),
		Target:      e.Target,
		SubjectKey:  e.Key,
		LastChecked: e.LastChecked,
		VulnRefs:    string(refs),
	}, nil
}

func (m cacheEntryModel) Inflate() (store.CacheEntry, error) {
	var refs []store.VulnRef
	if m.VulnRefs != "" && m.VulnRefs != "null" {
		if err := json.Unmarshal([]byte(m.VulnRefs), &refs); err != nil {
			return store.CacheEntry{}, fmt.Errorf("unable to decode cached vulnerability refs: %w", err)
		}
	}
	return store.CacheEntry{
		Source:      vuln.Source(m.Source),
		Target:      m.Target,
		Key:         m.SubjectKey,
		LastChecked: m.LastChecked,
		VulnRefs:    refs,
	}, nil
}
