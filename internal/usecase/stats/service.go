// Package stats maintains the process-wide usage counters.
package stats

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jurex/internal/logger"
)

// Store persists counters across restarts.
type Store interface {
	Get(ctx context.Context, name string) (int64, error)
	IncrBy(ctx context.Context, name string, val int64) error
}

// Counter names shared with the persistence layer.
const (
	CounterQueries   = "total_queries"
	CounterDocuments = "documents_uploaded"
	CounterCases     = "cases_ingested"
)

// Service counts queries and ingested documents with atomic increments.
// In-memory counters are authoritative for the running process; each
// increment is also written behind to the store, and store failures only
// log a warning so counting never blocks request handling.
type Service struct {
	queries   atomic.Int64
	documents atomic.Int64
	cases     atomic.Int64

	store Store
}

// New creates an in-memory stats service without persistence.
func New() *Service {
	return &Service{}
}

// NewWithStore creates a stats service seeded from persisted counters.
func NewWithStore(ctx context.Context, store Store) (*Service, error) {
	s := &Service{store: store}

	load := func(name string, dst *atomic.Int64) error {
		v, err := store.Get(ctx, name)
		if err != nil {
			return err
		}
		dst.Store(v)
		return nil
	}

	if err := load(CounterQueries, &s.queries); err != nil {
		return nil, err
	}
	if err := load(CounterDocuments, &s.documents); err != nil {
		return nil, err
	}
	if err := load(CounterCases, &s.cases); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordQuery counts one answered (or failed) query.
func (s *Service) RecordQuery(ctx context.Context) {
	s.queries.Add(1)
	s.persist(ctx, CounterQueries)
}

// RecordDocument counts one successfully ingested document.
func (s *Service) RecordDocument(ctx context.Context) {
	s.documents.Add(1)
	s.persist(ctx, CounterDocuments)
}

// RecordCase counts one successfully ingested case.
func (s *Service) RecordCase(ctx context.Context) {
	s.cases.Add(1)
	s.persist(ctx, CounterCases)
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	TotalQueries       int64
	DocumentsProcessed int64
	CasesIngested      int64
}

// Snapshot returns the current counter values.
func (s *Service) Snapshot() Snapshot {
	return Snapshot{
		TotalQueries:       s.queries.Load(),
		DocumentsProcessed: s.documents.Load(),
		CasesIngested:      s.cases.Load(),
	}
}

func (s *Service) persist(ctx context.Context, name string) {
	if s.store == nil {
		return
	}
	if err := s.store.IncrBy(ctx, name, 1); err != nil {
		logger.FromContext(ctx).Warn("stats persistence failed",
			zap.String("counter", name),
			zap.Error(err))
	}
}
