// Package db defines the storage contracts for the corpus store.
package db

import (
	"context"
	"time"
)

// Store is the corpus store facade combining all sub-interfaces.
// Consumers depend on narrow sub-interfaces (ISP).
type Store interface {
	Pinger
	HashStore
	KVStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides hash-based chunk storage operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore provides counter and simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	IncrBy(ctx context.Context, key string, val int64) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides KNN search over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// IndexFieldType enumerates supported FT schema field types.
type IndexFieldType string

const (
	// IndexFieldText is a full-text field.
	IndexFieldText IndexFieldType = "TEXT"
	// IndexFieldTag is an exact-match tag field.
	IndexFieldTag IndexFieldType = "TAG"
	// IndexFieldVector is an HNSW vector field.
	IndexFieldVector IndexFieldType = "VECTOR"
)

// IndexField describes one FT schema field.
type IndexField struct {
	Name string
	Type IndexFieldType

	// Vector fields only.
	Dim         int
	M           int
	EFConstruct int
}

// IndexDefinition describes an FT index over hash keys.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// KNNQuery is a vector similarity search request.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchEntry is a single raw search hit.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is a raw FT.SEARCH response.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}
