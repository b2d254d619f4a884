package ingest

import (
	"context"

	"github.com/kailas-cloud/jurex/internal/domain"
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	"github.com/kailas-cloud/jurex/internal/domain/passage"
)

// Repository persists chunks into a corpus store.
type Repository interface {
	EnsureIndex(ctx context.Context, c corpus.Corpus, vectorDim int) error
	InsertChunks(ctx context.Context, c corpus.Corpus, chunks []passage.Chunk) error
}

// Embedder vectorizes chunk batches.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// Generator summarizes judgment facts before indexing.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error)
}

// StatsRecorder counts successful ingestions.
type StatsRecorder interface {
	RecordDocument(ctx context.Context)
	RecordCase(ctx context.Context)
}
