package cwe

import (
	"strconv"
	"strings"
)

// Weakness is a single Common Weakness Enumeration classification.
type Weakness struct {
	ID   int
	Name string
}

// Resolver looks up a weakness classification by its CWE identifier string
// (e.g. "CWE-79", "CWE-79 Improper Neutralization...", or a bare "79").
// A nil result means the identifier could not be resolved.
type Resolver interface {
	Lookup(identifier string) *Weakness
}

// ParseID extracts the numeric CWE id from the given identifier string.
func ParseID(identifier string) (int, bool) {
	s := strings.TrimSpace(identifier)
	s = strings.TrimPrefix(strings.ToUpper(s), "CWE-")
	// tolerate trailing classification text ("79 Improper Neutralization ...")
	if i := strings.IndexByte(s, ' '); i != -1 {
		s = s[:i]
	}
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type dictionaryResolver struct {
	byID map[int]string
}

// NewDictionaryResolver returns a Resolver backed by the built-in CWE dictionary.
func NewDictionaryResolver() Resolver {
	return &dictionaryResolver{byID: dictionary}
}

func (r *dictionaryResolver) Lookup(identifier string) *Weakness {
	id, ok := ParseID(identifier)
	if !ok {
		return nil
	}
	name, ok := r.byID[id]
	if !ok {
		return nil
	}
	return &Weakness{ID: id, Name: name}
}
