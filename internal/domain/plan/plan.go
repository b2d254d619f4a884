// Package plan defines the per-corpus search plan produced by the planner.
package plan

import "github.com/kailas-cloud/jurex/internal/domain/corpus"

// Plan maps each corpus to an ordered list of sub-queries.
// Within one corpus the list holds no duplicates; an empty list means
// "not searched", never an error state.
type Plan struct {
	queries map[corpus.Corpus][]string
}

// New creates an empty plan covering both corpora.
func New() Plan {
	return Plan{queries: map[corpus.Corpus][]string{
		corpus.LegalDocs: nil,
		corpus.Cases:     nil,
	}}
}

// Add appends a sub-query to the corpus list, preserving insertion order.
// Duplicate sub-queries and blank strings are silently dropped.
// Returns true if the sub-query was added.
func (p *Plan) Add(c corpus.Corpus, subquery string) bool {
	if !c.Valid() || subquery == "" {
		return false
	}
	if p.queries == nil {
		p.queries = make(map[corpus.Corpus][]string, 2)
	}
	for _, q := range p.queries[c] {
		if q == subquery {
			return false
		}
	}
	p.queries[c] = append(p.queries[c], subquery)
	return true
}

// SubQueries returns a copy of the corpus sub-query list.
func (p Plan) SubQueries(c corpus.Corpus) []string {
	src := p.queries[c]
	if len(src) == 0 {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Count returns the number of sub-queries planned for a corpus.
func (p Plan) Count(c corpus.Corpus) int { return len(p.queries[c]) }

// WillSearch reports whether the corpus has at least one sub-query.
func (p Plan) WillSearch(c corpus.Corpus) bool { return len(p.queries[c]) > 0 }

// IsEmpty reports whether no corpus will be searched.
func (p Plan) IsEmpty() bool {
	for _, c := range corpus.All() {
		if p.WillSearch(c) {
			return false
		}
	}
	return true
}
