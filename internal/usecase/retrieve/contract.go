package retrieve

import (
	"context"

	"github.com/kailas-cloud/jurex/internal/domain"
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	"github.com/kailas-cloud/jurex/internal/domain/passage"
)

// Repository defines the storage contract for passage retrieval.
type Repository interface {
	SearchKNN(ctx context.Context, c corpus.Corpus, vector []float32, topK int) ([]passage.Passage, error)
}

// Embedder vectorizes sub-queries into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
