// Package answer defines the final engine output.
package answer

import (
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	"github.com/kailas-cloud/jurex/internal/domain/plan"
)

// Answer is the engine output for one query.
// Debug is populated only when the query requested diagnostics.
type Answer struct {
	Text  string
	Plan  plan.Plan
	Debug *DebugInfo
}

// UsedPassage summarizes one passage that backed the answer.
type UsedPassage struct {
	Corpus   corpus.Corpus
	SourceID string
	Title    string
	Score    float64
}

// DebugInfo carries per-request diagnostics for debug queries.
type DebugInfo struct {
	SubQueries    map[corpus.Corpus]int
	Retrieved     map[corpus.Corpus]int
	FailedCorpora []corpus.Corpus
	ContextSize   int
	ContextLen    int
	Passages      []UsedPassage
}
