package answer

import (
	"github.com/kailas-cloud/jurex/internal/domain/assembly"
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	"github.com/kailas-cloud/jurex/internal/domain/passage"
)

// assemble merges per-corpus retrieval results into one bounded context.
// Corpora are consumed in priority order (legal_docs first), so statutory
// text gets first claim on the budget. Within a corpus, passages arrive
// already score-sorted and are taken in order.
func assemble(retrieved map[corpus.Corpus][]passage.Passage, perCorpusCap, budgetChars int) assembly.Context {
	b := assembly.NewBuilder(perCorpusCap, budgetChars)
	for _, c := range corpus.All() {
		for _, p := range retrieved[c] {
			b.Add(p)
		}
	}
	return b.Context()
}
