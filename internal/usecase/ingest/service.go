// Package ingest loads statutory PDFs and structured case judgments into
// the corpus stores.
package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jurex/internal/domain"
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	"github.com/kailas-cloud/jurex/internal/domain/passage"
	"github.com/kailas-cloud/jurex/internal/logger"
)

// embedBatchSize bounds the number of chunks sent to the embedding API at once.
const embedBatchSize = 100

// factsPrompt condenses a judgment's facts section into one retrievable paragraph.
const factsPrompt = `You are a legal document analyst. Your task is to create a concise, RAG-optimized summary of the facts section from a legal judgment.

**Original Facts:**
%s

**Instructions:**
1. Write a coherent paragraph that captures the essential facts
2. Include: parties involved, key dates, events, and relevant background
3. Preserve legal terminology, case numbers, and proper nouns exactly
4. Present facts in chronological order
5. Focus on facts that are material to the legal issues
6. Remove procedural history unless directly relevant
7. Eliminate redundant language and verbose descriptions
8. Use dense, information-rich sentences
9. Keep total length between 100-250 words
10. Write for optimal semantic similarity matching - use precise legal language`

// CaseSections is the structured judgment content keyed by section name.
// Recognized sections: Facts, Issues, Reasoning, Conclusion.
type CaseSections struct {
	Facts      string
	Issues     string
	Reasoning  string
	Conclusion string
}

// Service ingests documents: extract, chunk, embed, store.
type Service struct {
	repo      Repository
	embed     Embedder
	gen       Generator
	stats     StatsRecorder
	vectorDim int
	chunker   *chunker
}

// New creates an ingestion service. chunkSize/chunkOverlap control
// statutory PDF splitting; case sections use their own sizes.
func New(repo Repository, embed Embedder, gen Generator, stats StatsRecorder, vectorDim, chunkSize, chunkOverlap int) *Service {
	return &Service{
		repo:      repo,
		embed:     embed,
		gen:       gen,
		stats:     stats,
		vectorDim: vectorDim,
		chunker:   newChunker(chunkSize, chunkOverlap),
	}
}

// IngestPDF extracts, chunks, embeds, and stores a statutory PDF.
// Returns the generated source ID and the number of stored chunks.
func (s *Service) IngestPDF(ctx context.Context, raw []byte, title string) (string, int, error) {
	log := logger.FromContext(ctx)

	text, err := extractPDF(raw)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", domain.ErrIngestion, err)
	}

	parts := s.chunker.Split(text)
	if len(parts) == 0 {
		return "", 0, fmt.Errorf("%w: document has no extractable text", domain.ErrIngestion)
	}

	sourceID := uuid.NewString()
	chunks := make([]passage.Chunk, len(parts))
	for i, content := range parts {
		chunks[i] = passage.Chunk{
			ID:       sourceID + ":" + strconv.Itoa(i),
			SourceID: sourceID,
			Title:    title,
			Content:  content,
		}
	}

	if err := s.store(ctx, corpus.LegalDocs, chunks); err != nil {
		return "", 0, err
	}

	log.Info("document ingested",
		zap.String("source_id", sourceID),
		zap.String("title", title),
		zap.Int("chunks", len(chunks)))

	if s.stats != nil {
		s.stats.RecordDocument(ctx)
	}
	return sourceID, len(chunks), nil
}

// IngestCase chunks a structured judgment per section and stores it in the
// case-law corpus. The facts section is summarized, not split; issues and
// reasoning are split with section-specific sizes; a short conclusion is
// kept whole.
func (s *Service) IngestCase(ctx context.Context, docID, caseTitle string, sections CaseSections) (int, error) {
	log := logger.FromContext(ctx)

	if docID == "" {
		docID = uuid.NewString()
	}

	var chunks []passage.Chunk
	add := func(sectionType, content string) {
		chunks = append(chunks, passage.Chunk{
			ID:       docID + ":" + sectionType + ":" + strconv.Itoa(len(chunks)),
			SourceID: docID,
			Title:    caseTitle,
			Section:  sectionType,
			Content:  content,
		})
	}

	if facts := strings.TrimSpace(sections.Facts); facts != "" {
		summary, err := s.summarizeFacts(ctx, facts)
		if err != nil {
			return 0, fmt.Errorf("%w: summarize facts: %w", domain.ErrIngestion, err)
		}
		add("Facts", summary)
	}
	if issues := strings.TrimSpace(sections.Issues); issues != "" {
		for _, part := range newChunker(1200, 150).Split(issues) {
			add("Issues", part)
		}
	}
	if reasoning := strings.TrimSpace(sections.Reasoning); reasoning != "" {
		for _, part := range newChunker(1500, 200).Split(reasoning) {
			add("Court's Reasoning", part)
		}
	}
	if conclusion := strings.TrimSpace(sections.Conclusion); conclusion != "" {
		if len(conclusion) > 2000 {
			for _, part := range newChunker(1200, 150).Split(conclusion) {
				add("Conclusion", part)
			}
		} else {
			add("Conclusion", conclusion)
		}
	}

	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: case has no content sections", domain.ErrIngestion)
	}

	if err := s.store(ctx, corpus.Cases, chunks); err != nil {
		return 0, err
	}

	log.Info("case ingested",
		zap.String("doc_id", docID),
		zap.String("case_title", caseTitle),
		zap.Int("chunks", len(chunks)))

	if s.stats != nil {
		s.stats.RecordCase(ctx)
	}
	return len(chunks), nil
}

// store embeds the chunk contents in batches and persists them.
func (s *Service) store(ctx context.Context, c corpus.Corpus, chunks []passage.Chunk) error {
	if err := s.repo.EnsureIndex(ctx, c, s.vectorDim); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIngestion, err)
	}

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, ch := range batch {
			texts[i] = ch.Content
		}

		res, err := s.embed.BatchEmbed(ctx, texts)
		if err != nil {
			return fmt.Errorf("%w: embed chunks: %w", domain.ErrIngestion, err)
		}
		for i := range batch {
			batch[i].Vector = res.Embeddings[i]
		}

		if err := s.repo.InsertChunks(ctx, c, batch); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrIngestion, err)
		}
	}
	return nil
}

func (s *Service) summarizeFacts(ctx context.Context, facts string) (string, error) {
	res, err := s.gen.Generate(ctx, domain.GenerationRequest{
		Prompt: fmt.Sprintf(factsPrompt, facts),
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(res.Text) == "" {
		return "", fmt.Errorf("empty summary")
	}
	return res.Text, nil
}
