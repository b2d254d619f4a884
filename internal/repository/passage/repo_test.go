package passage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/jurex/internal/db"
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	dompassage "github.com/kailas-cloud/jurex/internal/domain/passage"
)

func TestEnsureIndex_CreatesWhenMissing(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotDef *db.IndexDefinition
	ms.indexExistsFn = func(_ context.Context, name string) (bool, error) {
		if name != "jurex:legal_docs:idx" {
			t.Errorf("unexpected index name %q", name)
		}
		return false, nil
	}
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		gotDef = def
		return nil
	}

	if err := repo.EnsureIndex(context.Background(), corpus.LegalDocs, 768); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if gotDef == nil {
		t.Fatal("expected CreateIndex to be called")
	}
	if len(gotDef.Prefixes) != 1 || gotDef.Prefixes[0] != "jurex:legal_docs:" {
		t.Errorf("unexpected prefixes %v", gotDef.Prefixes)
	}

	var vecField *db.IndexField
	for i := range gotDef.Fields {
		if gotDef.Fields[i].Type == db.IndexFieldVector {
			vecField = &gotDef.Fields[i]
		}
	}
	if vecField == nil {
		t.Fatal("expected a vector field in the schema")
	}
	if vecField.Name != "vector" || vecField.Dim != 768 {
		t.Errorf("unexpected vector field %+v", *vecField)
	}
}

func TestEnsureIndex_SkipsWhenPresent(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) {
		return true, nil
	}
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		t.Fatal("CreateIndex must not be called when the index exists")
		return nil
	}

	if err := repo.EnsureIndex(context.Background(), corpus.Cases, 768); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
}

func TestInsertChunks_BuildsKeysAndFields(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotItems []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		gotItems = items
		return nil
	}

	chunks := []dompassage.Chunk{
		{ID: "doc-1:0", SourceID: "doc-1", Title: "Civil Code", Content: "Article 21 text", Vector: testVector()},
		{ID: "doc-1:1", SourceID: "doc-1", Content: "continuation", Vector: testVector()},
	}
	if err := repo.InsertChunks(context.Background(), corpus.LegalDocs, chunks); err != nil {
		t.Fatalf("InsertChunks: %v", err)
	}

	if len(gotItems) != 2 {
		t.Fatalf("expected 2 items, got %d", len(gotItems))
	}
	if gotItems[0].Key != "jurex:legal_docs:doc-1:0" {
		t.Errorf("unexpected key %q", gotItems[0].Key)
	}
	if gotItems[0].Fields["content"] != "Article 21 text" {
		t.Errorf("unexpected content %q", gotItems[0].Fields["content"])
	}
	if gotItems[0].Fields["title"] != "Civil Code" {
		t.Errorf("unexpected title %q", gotItems[0].Fields["title"])
	}
	if gotItems[0].Fields["source_id"] != "doc-1" {
		t.Errorf("unexpected source_id %q", gotItems[0].Fields["source_id"])
	}
	if gotItems[0].Fields["vector"] == "" {
		t.Error("expected serialized vector")
	}
	if len(gotItems[0].Fields["vector"]) != 4*4 {
		t.Errorf("expected 16-byte vector blob, got %d bytes", len(gotItems[0].Fields["vector"]))
	}
	// empty title is omitted
	if _, ok := gotItems[1].Fields["title"]; ok {
		t.Error("expected no title field for untitled chunk")
	}
}

func TestInsertChunks_EmptyBatchIsNoop(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hsetMultiFn = func(_ context.Context, _ []db.HashSetItem) error {
		t.Fatal("HSetMulti must not be called for empty batch")
		return nil
	}

	if err := repo.InsertChunks(context.Background(), corpus.LegalDocs, nil); err != nil {
		t.Fatalf("InsertChunks: %v", err)
	}
}

func TestSearchKNN_ParsesAndRanks(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != "jurex:cases:idx" {
			t.Errorf("unexpected index %q", q.IndexName)
		}
		if q.K != 5 {
			t.Errorf("unexpected K %d", q.K)
		}
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{
					Key:   "jurex:cases:case-7:2",
					Score: 0.91,
					Fields: map[string]string{
						"content":   "The court held that...",
						"title":     "Smith v. State",
						"section":   "holding",
						"source_id": "case-7",
					},
				},
				{
					Key:   "jurex:cases:case-3:0",
					Score: 0.64,
					Fields: map[string]string{
						"content":   "On the facts presented...",
						"source_id": "case-3",
					},
				},
			},
		}, nil
	}

	got, err := repo.SearchKNN(context.Background(), corpus.Cases, testVector(), 5)
	if err != nil {
		t.Fatalf("SearchKNN: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(got))
	}
	if got[0].SourceID() != "case-7" || got[0].Rank() != 1 {
		t.Errorf("unexpected first passage: source=%q rank=%d", got[0].SourceID(), got[0].Rank())
	}
	if got[0].Title() != "Smith v. State" || got[0].Section() != "holding" {
		t.Errorf("unexpected first passage metadata: title=%q section=%q", got[0].Title(), got[0].Section())
	}
	if got[1].SourceID() != "case-3" || got[1].Rank() != 2 {
		t.Errorf("unexpected second passage: source=%q rank=%d", got[1].SourceID(), got[1].Rank())
	}
	if got[1].Score() != 0.64 {
		t.Errorf("unexpected score %f", got[1].Score())
	}
}

func TestSearchKNN_SkipsEmptyContent(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{Key: "jurex:legal_docs:d1:0", Score: 0.8, Fields: map[string]string{"source_id": "d1"}},
				{Key: "jurex:legal_docs:d2:0", Score: 0.7, Fields: map[string]string{
					"content": "present", "source_id": "d2",
				}},
			},
		}, nil
	}

	got, err := repo.SearchKNN(context.Background(), corpus.LegalDocs, testVector(), 5)
	if err != nil {
		t.Fatalf("SearchKNN: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(got))
	}
	if got[0].SourceID() != "d2" || got[0].Rank() != 1 {
		t.Errorf("unexpected passage: source=%q rank=%d", got[0].SourceID(), got[0].Rank())
	}
}

func TestSearchKNN_FallsBackToKeyForSourceID(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total: 1,
			Entries: []db.SearchEntry{
				{Key: "jurex:legal_docs:orphan", Score: 0.5, Fields: map[string]string{"content": "text"}},
			},
		}, nil
	}

	got, err := repo.SearchKNN(context.Background(), corpus.LegalDocs, testVector(), 1)
	if err != nil {
		t.Fatalf("SearchKNN: %v", err)
	}
	if len(got) != 1 || got[0].SourceID() != "orphan" {
		t.Fatalf("expected source_id fallback to key suffix, got %+v", got)
	}
}

func TestSearchKNN_PropagatesStoreError(t *testing.T) {
	repo, ms := newTestRepo(t)

	wantErr := errors.New("connection refused")
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, wantErr
	}

	_, err := repo.SearchKNN(context.Background(), corpus.Cases, testVector(), 5)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestCount(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchCountFn = func(_ context.Context, index, query string) (int, error) {
		if index != "jurex:legal_docs:idx" || query != "*" {
			return 0, fmt.Errorf("unexpected count args %q %q", index, query)
		}
		return 42, nil
	}

	n, err := repo.Count(context.Background(), corpus.LegalDocs)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 42 {
		t.Errorf("expected 42, got %d", n)
	}
}
