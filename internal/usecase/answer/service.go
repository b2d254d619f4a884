// Package answer implements the query answering engine: planning,
// concurrent per-corpus retrieval, context assembly, and synthesis.
package answer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jurex/internal/domain"
	domanswer "github.com/kailas-cloud/jurex/internal/domain/answer"
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	"github.com/kailas-cloud/jurex/internal/domain/passage"
	domplan "github.com/kailas-cloud/jurex/internal/domain/plan"
	"github.com/kailas-cloud/jurex/internal/domain/query"
	"github.com/kailas-cloud/jurex/internal/logger"
	"github.com/kailas-cloud/jurex/internal/metrics"
)

// Service is the answering engine.
type Service struct {
	planner      Planner
	retrievers   map[corpus.Corpus]Retriever
	gen          Generator
	stats        StatsRecorder
	perCorpusCap int
	budgetChars  int
}

// New creates the answering engine. retrievers must cover every corpus the
// planner can route to.
func New(
	planner Planner, retrievers map[corpus.Corpus]Retriever,
	gen Generator, stats StatsRecorder,
	perCorpusCap, budgetChars int,
) *Service {
	return &Service{
		planner:      planner,
		retrievers:   retrievers,
		gen:          gen,
		stats:        stats,
		perCorpusCap: perCorpusCap,
		budgetChars:  budgetChars,
	}
}

// Analysis is the inspectable plan for a query, without execution.
type Analysis struct {
	Plan                domplan.Plan
	WillSearchLegalDocs bool
	WillSearchCases     bool
}

// Analyze returns the search plan the engine would execute for the query.
func (s *Service) Analyze(ctx context.Context, q query.Query) Analysis {
	p := s.planner.Plan(ctx, q.Text())
	return Analysis{
		Plan:                p,
		WillSearchLegalDocs: p.WillSearch(corpus.LegalDocs),
		WillSearchCases:     p.WillSearch(corpus.Cases),
	}
}

// Answer runs the full pipeline for one query.
//
// A retrieval failure on one corpus degrades to the surviving corpus; a
// failure on both degrades to the empty-context reply. Only synthesis
// failures propagate as errors.
func (s *Service) Answer(ctx context.Context, q query.Query) (domanswer.Answer, error) {
	log := logger.FromContext(ctx)

	if s.stats != nil {
		defer s.stats.RecordQuery(ctx)
	}

	p := s.planner.Plan(ctx, q.Text())

	retrieved, failed := s.retrieveAll(ctx, p)

	assembled := assemble(retrieved, s.perCorpusCap, s.budgetChars)
	metrics.ContextSizeChars.Observe(float64(assembled.Size()))

	log.Info("context assembled",
		zap.Int("passages", assembled.Len()),
		zap.Int("size_chars", assembled.Size()),
		zap.Int("failed_corpora", len(failed)))

	var text string
	if assembled.IsEmpty() {
		// Nothing to ground an answer on; the backend is not consulted.
		text = noContextAnswer
		metrics.QueriesTotal.WithLabelValues("no_context").Inc()
	} else {
		res, err := s.gen.Generate(ctx, domain.GenerationRequest{
			System: synthesisSystem,
			Prompt: buildSynthesisPrompt(assembled, q.Text()),
		})
		if err != nil {
			metrics.QueriesTotal.WithLabelValues("synthesis_failed").Inc()
			return domanswer.Answer{}, fmt.Errorf("%w: %w", domain.ErrSynthesis, err)
		}
		text = res.Text
		metrics.QueriesTotal.WithLabelValues("answered").Inc()
	}

	ans := domanswer.Answer{Text: text, Plan: p}
	if q.Debug() {
		ans.Debug = buildDebugInfo(p, retrieved, failed, assembled.Size(), assembled.Len(), assembled.Passages())
	}
	return ans, nil
}

// retrieveAll runs the planned corpus searches concurrently. Failures are
// absorbed: the failing corpus contributes nothing and is reported back.
func (s *Service) retrieveAll(ctx context.Context, p domplan.Plan) (
	map[corpus.Corpus][]passage.Passage, []corpus.Corpus,
) {
	log := logger.FromContext(ctx)

	var mu sync.Mutex
	var wg sync.WaitGroup
	retrieved := make(map[corpus.Corpus][]passage.Passage)
	failedSet := make(map[corpus.Corpus]bool)

	for _, c := range corpus.All() {
		subqueries := p.SubQueries(c)
		if len(subqueries) == 0 {
			continue
		}
		retriever, ok := s.retrievers[c]
		if !ok {
			continue
		}

		wg.Add(1)
		go func(c corpus.Corpus) {
			defer wg.Done()

			hits, err := retriever.Search(ctx, c, subqueries)
			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				failedSet[c] = true
				metrics.RetrievalFailuresTotal.WithLabelValues(string(c)).Inc()
				log.Warn("corpus retrieval failed, continuing without it",
					zap.String("corpus", string(c)),
					zap.Error(err))
				return
			}
			retrieved[c] = hits
		}(c)
	}
	wg.Wait()

	// report failures in corpus priority order
	var failed []corpus.Corpus
	for _, c := range corpus.All() {
		if failedSet[c] {
			failed = append(failed, c)
		}
	}
	return retrieved, failed
}

func buildDebugInfo(
	p domplan.Plan, retrieved map[corpus.Corpus][]passage.Passage,
	failed []corpus.Corpus, contextSize, contextLen int, used []passage.Passage,
) *domanswer.DebugInfo {
	info := &domanswer.DebugInfo{
		SubQueries:    make(map[corpus.Corpus]int, 2),
		Retrieved:     make(map[corpus.Corpus]int, 2),
		FailedCorpora: failed,
		ContextSize:   contextSize,
		ContextLen:    contextLen,
	}
	for _, c := range corpus.All() {
		info.SubQueries[c] = p.Count(c)
		info.Retrieved[c] = len(retrieved[c])
	}
	for _, up := range used {
		info.Passages = append(info.Passages, domanswer.UsedPassage{
			Corpus:   up.Corpus(),
			SourceID: up.SourceID(),
			Title:    up.Title(),
			Score:    up.Score(),
		})
	}
	return info
}
