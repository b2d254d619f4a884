// Package corpus defines the two independently indexed document collections.
package corpus

import "fmt"

// Corpus identifies one of the indexed document collections.
type Corpus string

const (
	// LegalDocs holds statutory text: constitution, codes, acts.
	LegalDocs Corpus = "legal_docs"
	// Cases holds case-law judgments.
	Cases Corpus = "cases"
)

// All returns the corpora in assembly priority order, statutory text first.
func All() []Corpus {
	return []Corpus{LegalDocs, Cases}
}

// Valid reports whether c is a known corpus tag.
func (c Corpus) Valid() bool {
	return c == LegalDocs || c == Cases
}

// String returns the corpus tag.
func (c Corpus) String() string { return string(c) }

// Parse converts a raw tag into a Corpus.
func Parse(s string) (Corpus, error) {
	c := Corpus(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown corpus %q", s)
	}
	return c, nil
}
