// Package passage provides chunk storage and KNN retrieval over the
// per-corpus vector indexes.
package passage

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/jurex/internal/db"
	"github.com/kailas-cloud/jurex/internal/domain"
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	dompassage "github.com/kailas-cloud/jurex/internal/domain/passage"
)

// store is the consumer interface for passage storage (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements chunk persistence and retrieval for one corpus store.
type Repo struct {
	store store
}

// New creates a passage repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the corpus vector index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context, c corpus.Corpus, vectorDim int) error {
	name := indexName(c)

	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     name,
		Prefixes: []string{keyPrefix(c)},
		Fields: []db.IndexField{
			{Name: "content", Type: db.IndexFieldText},
			{Name: "title", Type: db.IndexFieldText},
			{Name: "source_id", Type: db.IndexFieldTag},
			{Name: "section", Type: db.IndexFieldTag},
			{Name: "vector", Type: db.IndexFieldVector, Dim: vectorDim},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// InsertChunks stores a batch of chunks under the corpus key prefix.
func (r *Repo) InsertChunks(ctx context.Context, c corpus.Corpus, chunks []dompassage.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(chunks))
	for _, ch := range chunks {
		items = append(items, db.HashSetItem{
			Key:    chunkKey(c, ch.ID),
			Fields: buildHashFields(ch),
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("insert %d chunks into %s: %w", len(chunks), c, err)
	}
	return nil
}

// SearchKNN performs a vector similarity search on a corpus and returns
// passages ranked by result position.
func (r *Repo) SearchKNN(ctx context.Context, c corpus.Corpus, vector []float32, topK int) (
	[]dompassage.Passage, error,
) {
	q := &db.KNNQuery{
		IndexName:    indexName(c),
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{"content", "title", "section", "source_id", "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", c, err)
	}

	return parseKNNResult(sr, c)
}

// Count returns the number of stored chunks in a corpus.
func (r *Repo) Count(ctx context.Context, c corpus.Corpus) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName(c), "*")
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", c, err)
	}
	return n, nil
}

func indexName(c corpus.Corpus) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, c)
}

func keyPrefix(c corpus.Corpus) string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, c)
}

func chunkKey(c corpus.Corpus, id string) string {
	return keyPrefix(c) + id
}
