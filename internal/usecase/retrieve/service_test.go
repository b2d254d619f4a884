package retrieve

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/jurex/internal/domain"
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	"github.com/kailas-cloud/jurex/internal/domain/passage"
)

type mockRepo struct {
	searchKNNFn func(ctx context.Context, c corpus.Corpus, vector []float32, topK int) ([]passage.Passage, error)
}

func (m *mockRepo) SearchKNN(ctx context.Context, c corpus.Corpus, vector []float32, topK int) ([]passage.Passage, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, c, vector, topK)
	}
	return nil, nil
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

func mustPassage(t *testing.T, c corpus.Corpus, sourceID, chunk string, score float64) passage.Passage {
	t.Helper()
	p, err := passage.New(c, sourceID, "", "", chunk, score, 1)
	if err != nil {
		t.Fatalf("passage.New: %v", err)
	}
	return p
}

func TestSearch_MergesAndRanks(t *testing.T) {
	repo := &mockRepo{}
	calls := 0
	repo.searchKNNFn = func(_ context.Context, c corpus.Corpus, _ []float32, topK int) ([]passage.Passage, error) {
		if topK != 5 {
			t.Errorf("unexpected topK %d", topK)
		}
		calls++
		switch calls {
		case 1:
			return []passage.Passage{
				mustPassage(t, c, "d1", "first chunk", 0.9),
				mustPassage(t, c, "d2", "second chunk", 0.5),
			}, nil
		default:
			return []passage.Passage{
				mustPassage(t, c, "d3", "third chunk", 0.7),
			}, nil
		}
	}

	svc := New(repo, &mockEmbedder{}, 5, 0, time.Second)

	got, err := svc.Search(context.Background(), corpus.LegalDocs, []string{"Article 21", "Article 21 Constitution"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 passages, got %d", len(got))
	}
	wantOrder := []string{"d1", "d3", "d2"}
	for i, want := range wantOrder {
		if got[i].SourceID() != want {
			t.Errorf("position %d: got %q, want %q", i, got[i].SourceID(), want)
		}
		if got[i].Rank() != i+1 {
			t.Errorf("position %d: rank %d, want %d", i, got[i].Rank(), i+1)
		}
	}
}

func TestSearch_DedupesAcrossSubQueries(t *testing.T) {
	repo := &mockRepo{
		searchKNNFn: func(_ context.Context, c corpus.Corpus, _ []float32, _ int) ([]passage.Passage, error) {
			return []passage.Passage{
				mustPassage(t, c, "d1", "same chunk", 0.8),
			}, nil
		},
	}

	svc := New(repo, &mockEmbedder{}, 5, 0, time.Second)

	got, err := svc.Search(context.Background(), corpus.Cases, []string{"first", "second"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 deduplicated passage, got %d", len(got))
	}
}

func TestSearch_FiltersBelowMinScore(t *testing.T) {
	repo := &mockRepo{
		searchKNNFn: func(_ context.Context, c corpus.Corpus, _ []float32, _ int) ([]passage.Passage, error) {
			return []passage.Passage{
				mustPassage(t, c, "d1", "strong", 0.9),
				mustPassage(t, c, "d2", "weak", 0.1),
			}, nil
		},
	}

	svc := New(repo, &mockEmbedder{}, 5, 0.5, time.Second)

	got, err := svc.Search(context.Background(), corpus.LegalDocs, []string{"query"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].SourceID() != "d1" {
		t.Fatalf("expected only strong passage, got %v", got)
	}
}

func TestSearch_EmptyPlanIsNoop(t *testing.T) {
	repo := &mockRepo{
		searchKNNFn: func(_ context.Context, _ corpus.Corpus, _ []float32, _ int) ([]passage.Passage, error) {
			t.Fatal("SearchKNN must not be called for empty sub-queries")
			return nil, nil
		},
	}

	svc := New(repo, &mockEmbedder{}, 5, 0, time.Second)

	got, err := svc.Search(context.Background(), corpus.LegalDocs, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil result, got %v", got)
	}
}

func TestSearch_NoMatchesIsNotAnError(t *testing.T) {
	svc := New(&mockRepo{}, &mockEmbedder{}, 5, 0, time.Second)

	got, err := svc.Search(context.Background(), corpus.Cases, []string{"anything"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestSearch_PropagatesErrors(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := &mockRepo{
		searchKNNFn: func(_ context.Context, _ corpus.Corpus, _ []float32, _ int) ([]passage.Passage, error) {
			return nil, storeErr
		},
	}
	svc := New(repo, &mockEmbedder{}, 5, 0, time.Second)

	if _, err := svc.Search(context.Background(), corpus.LegalDocs, []string{"q"}); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}

	embedErr := errors.New("embedding down")
	emb := &mockEmbedder{
		embedFn: func(_ context.Context, _ string) (domain.EmbeddingResult, error) {
			return domain.EmbeddingResult{}, embedErr
		},
	}
	svc = New(&mockRepo{}, emb, 5, 0, time.Second)

	if _, err := svc.Search(context.Background(), corpus.LegalDocs, []string{"q"}); !errors.Is(err, embedErr) {
		t.Fatalf("expected embed error, got %v", err)
	}
}
