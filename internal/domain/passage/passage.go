// Package passage defines the retrieved text chunk value object.
package passage

import (
	"fmt"

	"github.com/kailas-cloud/jurex/internal/domain/corpus"
)

// Passage is a single retrieved chunk with its similarity score.
// Produced only by a retriever; immutable. Scores are corpus-local and
// not comparable across corpora.
type Passage struct {
	corpus   corpus.Corpus
	sourceID string
	title    string
	section  string
	chunk    string
	score    float64
	rank     int
}

// New validates and creates a Passage.
func New(c corpus.Corpus, sourceID, title, section, chunk string, score float64, rank int) (Passage, error) {
	if !c.Valid() {
		return Passage{}, fmt.Errorf("unknown corpus %q", c)
	}
	if sourceID == "" {
		return Passage{}, fmt.Errorf("source ID is required")
	}
	if chunk == "" {
		return Passage{}, fmt.Errorf("chunk text is required")
	}
	if rank < 1 {
		return Passage{}, fmt.Errorf("rank must be positive, got %d", rank)
	}
	return Passage{
		corpus: c, sourceID: sourceID, title: title,
		section: section, chunk: chunk, score: score, rank: rank,
	}, nil
}

// Corpus returns the corpus this passage was retrieved from.
func (p Passage) Corpus() corpus.Corpus { return p.corpus }

// SourceID returns the originating document identifier.
func (p Passage) SourceID() string { return p.sourceID }

// Title returns the document title, if stored.
func (p Passage) Title() string { return p.title }

// Section returns the judgment section type for case-law passages.
func (p Passage) Section() string { return p.section }

// Chunk returns the passage text.
func (p Passage) Chunk() string { return p.chunk }

// Score returns the corpus-local similarity score.
func (p Passage) Score() float64 { return p.score }

// Rank returns the position assigned by the retriever, starting at 1.
func (p Passage) Rank() int { return p.rank }

// WithRank returns a copy of the passage with the rank replaced.
func (p Passage) WithRank(rank int) Passage {
	p.rank = rank
	return p
}

// Key identifies the (corpus, source_id, chunk_text) deduplication tuple.
func (p Passage) Key() string {
	return string(p.corpus) + "\x00" + p.sourceID + "\x00" + p.chunk
}

// Size returns the serialized size of the passage text in characters.
func (p Passage) Size() int { return len(p.chunk) }

// Chunk is a storable unit of corpus text with its embedding, produced by
// ingestion and persisted by the passage repository.
type Chunk struct {
	ID       string
	SourceID string
	Title    string
	Section  string
	Content  string
	Vector   []float32
}
