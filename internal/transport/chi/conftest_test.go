package chi

import (
	"context"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	domanswer "github.com/kailas-cloud/jurex/internal/domain/answer"
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	"github.com/kailas-cloud/jurex/internal/domain/query"
	answeruc "github.com/kailas-cloud/jurex/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/jurex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/jurex/internal/usecase/ingest"
	statsuc "github.com/kailas-cloud/jurex/internal/usecase/stats"
)

type mockEngine struct {
	answerFn  func(ctx context.Context, q query.Query) (domanswer.Answer, error)
	analyzeFn func(ctx context.Context, q query.Query) answeruc.Analysis
}

func (m *mockEngine) Answer(ctx context.Context, q query.Query) (domanswer.Answer, error) {
	return m.answerFn(ctx, q)
}

func (m *mockEngine) Analyze(ctx context.Context, q query.Query) answeruc.Analysis {
	return m.analyzeFn(ctx, q)
}

type mockIngestor struct {
	ingestPDFFn  func(ctx context.Context, raw []byte, title string) (string, int, error)
	ingestCaseFn func(ctx context.Context, docID, caseTitle string, sections ingestuc.CaseSections) (int, error)
}

func (m *mockIngestor) IngestPDF(ctx context.Context, raw []byte, title string) (string, int, error) {
	return m.ingestPDFFn(ctx, raw, title)
}

func (m *mockIngestor) IngestCase(ctx context.Context, docID, caseTitle string, sections ingestuc.CaseSections) (int, error) {
	return m.ingestCaseFn(ctx, docID, caseTitle, sections)
}

type mockStats struct {
	snapshotFn    func() statsuc.Snapshot
	recordQueryFn func(ctx context.Context)
}

func (m *mockStats) Snapshot() statsuc.Snapshot { return m.snapshotFn() }

func (m *mockStats) RecordQuery(ctx context.Context) {
	if m.recordQueryFn != nil {
		m.recordQueryFn(ctx)
	}
}

type mockHealth struct {
	checkFn func(ctx context.Context) healthuc.Report
}

func (m *mockHealth) Check(ctx context.Context) healthuc.Report { return m.checkFn(ctx) }

type mockCounter struct {
	countFn func(ctx context.Context, c corpus.Corpus) (int, error)
}

func (m *mockCounter) Count(ctx context.Context, c corpus.Corpus) (int, error) {
	return m.countFn(ctx, c)
}

type testDeps struct {
	engine   *mockEngine
	ingestor *mockIngestor
	stats    *mockStats
	health   *mockHealth
	counter  *mockCounter
}

func newTestServer(d testDeps) *httptest.Server {
	if d.engine == nil {
		d.engine = &mockEngine{}
	}
	if d.ingestor == nil {
		d.ingestor = &mockIngestor{}
	}
	if d.stats == nil {
		d.stats = &mockStats{snapshotFn: func() statsuc.Snapshot { return statsuc.Snapshot{} }}
	}
	if d.health == nil {
		d.health = &mockHealth{checkFn: func(context.Context) healthuc.Report {
			return healthuc.Report{Status: healthuc.Healthy}
		}}
	}
	if d.counter == nil {
		d.counter = &mockCounter{countFn: func(context.Context, corpus.Corpus) (int, error) { return 0, nil }}
	}

	s := NewServer(d.engine, d.ingestor, d.stats, d.health, d.counter, 0, zap.NewNop())
	r := chi.NewRouter()
	s.Mount(r)
	return httptest.NewServer(r)
}
