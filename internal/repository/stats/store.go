// Package stats persists the engine usage counters in the corpus store.
package stats

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/jurex/internal/db"
	"github.com/kailas-cloud/jurex/internal/domain"
)

// store is the consumer interface for counter operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
}

// Counter names persisted under the stats key prefix.
const (
	CounterQueries   = "total_queries"
	CounterDocuments = "documents_uploaded"
	CounterCases     = "cases_ingested"
)

// Store implements counter persistence on top of DB (INCRBY + GET).
type Store struct {
	store store
}

// New creates a stats store.
func New(s store) *Store {
	return &Store{store: s}
}

// IncrBy atomically increments a named counter.
func (s *Store) IncrBy(ctx context.Context, name string, val int64) error {
	if err := s.store.IncrBy(ctx, counterKey(name), val); err != nil {
		return fmt.Errorf("stats INCRBY %s: %w", name, err)
	}
	return nil
}

// Get returns the current counter value. Returns 0 if the key does not exist.
func (s *Store) Get(ctx context.Context, name string) (int64, error) {
	data, err := s.store.Get(ctx, counterKey(name))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("stats GET %s: %w", name, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("stats GET %s parse: %w", name, err)
	}
	return val, nil
}

func counterKey(name string) string {
	return domain.KeyPrefix + "stats:" + name
}
