package fact

import (
	"fmt"
	"time"
)

// Provenance records where an atom came from: the source URL (optional), a
// content hash of that source, the retrieval date, and an optional lens
// confidence. The content hash is what provenance consistency checks
// compare when two graphs cite the same URL.
type Provenance struct {
	URL        string  `json:"url,omitempty"`
	Hash       string  `json:"hash"`
	Date       string  `json:"date"`
	Confidence float64 `json:"confidence,omitempty"`
}

// IsValid checks the provenance shape: a content hash is required and the
// date must be ISO-8601 when present.
func (p *Provenance) IsValid() error {
	if p.Hash == "" {
		return fmt.Errorf("provenance hash is required")
	}
	if p.Date != "" {
		if _, err := time.Parse(time.RFC3339, p.Date); err != nil {
			if _, err := time.Parse("2006-01-02", p.Date); err != nil {
				return fmt.Errorf("provenance date %q is not ISO-8601", p.Date)
			}
		}
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("provenance confidence %v is out of range [0,1]", p.Confidence)
	}
	return nil
}

// Atom is one immutable subject-predicate-object fact. The JSON field names
// are the wire format exchanged with lenses and surrounding tooling.
type Atom struct {
	Subject   string     `json:"s"`
	Predicate string     `json:"p"`
	Object    string     `json:"o"`
	Prov      Provenance `json:"prov"`
}

// Key flattens the atom to its subject:predicate:object membership string.
// Jaccard similarity, deduplication and difference reports all operate on
// this key; provenance deliberately does not participate.
func (a Atom) Key() string {
	return a.Subject + ":" + a.Predicate + ":" + a.Object
}

// IsValid checks that the atom has all required fields.
func (a *Atom) IsValid() error {
	if a.Subject == "" {
		return fmt.Errorf("fact subject is required")
	}
	if a.Predicate == "" {
		return fmt.Errorf("fact predicate is required")
	}
	if a.Object == "" {
		return fmt.Errorf("fact object is required")
	}
	return a.Prov.IsValid()
}

// Entity is one row of the graph's entity table.
type Entity struct {
	Aliases []string `json:"aliases,omitempty"`
	Type    string   `json:"type,omitempty"`
}

// Graph is a fact set with its entity table and relation vocabulary.
type Graph struct {
	Facts     []Atom            `json:"facts"`
	Entities  map[string]Entity `json:"entities,omitempty"`
	Relations []string          `json:"relations,omitempty"`
}

// Empty returns a graph with no facts and no entities.
func Empty() Graph {
	return Graph{Facts: []Atom{}}
}

// Keys returns the flattened membership strings of all facts, in order.
func (g Graph) Keys() []string {
	keys := make([]string, len(g.Facts))
	for i, f := range g.Facts {
		keys[i] = f.Key()
	}
	return keys
}

// KeySet returns the facts as a set of membership strings.
func (g Graph) KeySet() map[string]struct{} {
	set := make(map[string]struct{}, len(g.Facts))
	for _, f := range g.Facts {
		set[f.Key()] = struct{}{}
	}
	return set
}
