package answer

import (
	"context"

	"github.com/kailas-cloud/jurex/internal/domain"
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	"github.com/kailas-cloud/jurex/internal/domain/passage"
	domplan "github.com/kailas-cloud/jurex/internal/domain/plan"
)

// Planner routes a raw query across the corpora.
type Planner interface {
	Plan(ctx context.Context, text string) domplan.Plan
}

// Retriever searches one corpus for a set of sub-queries.
type Retriever interface {
	Search(ctx context.Context, c corpus.Corpus, subqueries []string) ([]passage.Passage, error)
}

// Generator synthesizes the final answer text from the grounded prompt.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error)
}

// StatsRecorder counts answered queries.
type StatsRecorder interface {
	RecordQuery(ctx context.Context)
}
