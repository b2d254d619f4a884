// Package retrieve implements per-corpus vector retrieval of candidate
// passages for a set of sub-queries.
package retrieve

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	"github.com/kailas-cloud/jurex/internal/domain/passage"
	"github.com/kailas-cloud/jurex/internal/metrics"
)

// Service retrieves score-ordered passages from one corpus store.
type Service struct {
	repo     Repository
	embed    Embedder
	topK     int
	minScore float64
	timeout  time.Duration
}

// New creates a retrieval service. topK bounds results per sub-query,
// minScore excludes weak matches, timeout bounds one corpus search.
func New(repo Repository, embed Embedder, topK int, minScore float64, timeout time.Duration) *Service {
	if topK <= 0 {
		topK = 5
	}
	return &Service{repo: repo, embed: embed, topK: topK, minScore: minScore, timeout: timeout}
}

// Search embeds each sub-query, runs a KNN search per embedding, and merges
// the results into a single score-descending list with stable ordering.
// Duplicate (corpus, source, chunk) hits across sub-queries are kept once.
// Returns an empty list, not an error, when nothing matches.
func (s *Service) Search(ctx context.Context, c corpus.Corpus, subqueries []string) ([]passage.Passage, error) {
	if len(subqueries) == 0 {
		return nil, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	seen := make(map[string]struct{})
	var merged []passage.Passage

	for _, sq := range subqueries {
		emb, err := s.embed.Embed(ctx, sq)
		if err != nil {
			return nil, fmt.Errorf("embed sub-query: %w", err)
		}

		hits, err := s.repo.SearchKNN(ctx, c, emb.Embedding, s.topK)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", c, err)
		}

		for _, p := range hits {
			if p.Score() < s.minScore {
				continue
			}
			if _, dup := seen[p.Key()]; dup {
				continue
			}
			seen[p.Key()] = struct{}{}
			merged = append(merged, p)
		}
	}

	// Stable sort keeps per-search insertion order for equal scores.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score() > merged[j].Score()
	})

	for i := range merged {
		merged[i] = merged[i].WithRank(i + 1)
	}

	metrics.RetrievedPassagesTotal.WithLabelValues(string(c)).Add(float64(len(merged)))

	return merged, nil
}
