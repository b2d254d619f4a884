// Package assembly defines the bounded, deduplicated context fed to synthesis.
package assembly

import (
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	"github.com/kailas-cloud/jurex/internal/domain/passage"
)

// Context is the ordered passage sequence assembled for one generation request.
type Context struct {
	passages []passage.Passage
	size     int
}

// Passages returns a copy of the assembled passages in assembly order.
func (c Context) Passages() []passage.Passage {
	if len(c.passages) == 0 {
		return nil
	}
	out := make([]passage.Passage, len(c.passages))
	copy(out, c.passages)
	return out
}

// ByCorpus returns the assembled passages belonging to one corpus, in order.
func (c Context) ByCorpus(tag corpus.Corpus) []passage.Passage {
	var out []passage.Passage
	for _, p := range c.passages {
		if p.Corpus() == tag {
			out = append(out, p)
		}
	}
	return out
}

// Size returns the cumulative serialized size in characters.
func (c Context) Size() int { return c.size }

// Len returns the number of assembled passages.
func (c Context) Len() int { return len(c.passages) }

// IsEmpty reports whether no passage was assembled.
func (c Context) IsEmpty() bool { return len(c.passages) == 0 }

// AddResult explains why a passage was or was not admitted by the builder.
type AddResult string

const (
	// Added means the passage was admitted.
	Added AddResult = "added"
	// Duplicate means the (corpus, source_id, chunk_text) tuple was already included.
	Duplicate AddResult = "duplicate"
	// CorpusCapReached means the per-corpus cap was already filled.
	CorpusCapReached AddResult = "corpus_cap"
	// BudgetExhausted means admitting the passage would exceed the context budget.
	BudgetExhausted AddResult = "budget"
)

// Builder constructs a Context under the per-corpus cap and global budget.
// A passage that would overflow the budget is dropped whole, never truncated,
// and closes the budget for all later passages.
type Builder struct {
	perCorpusCap int
	budgetChars  int
	seen         map[string]struct{}
	perCorpus    map[corpus.Corpus]int
	closed       bool
	ctx          Context
}

// NewBuilder creates a Builder. Non-positive cap or budget means unlimited.
func NewBuilder(perCorpusCap, budgetChars int) *Builder {
	return &Builder{
		perCorpusCap: perCorpusCap,
		budgetChars:  budgetChars,
		seen:         make(map[string]struct{}),
		perCorpus:    make(map[corpus.Corpus]int),
	}
}

// Add admits the passage if it passes dedup, cap, and budget checks.
func (b *Builder) Add(p passage.Passage) AddResult {
	if b.closed {
		return BudgetExhausted
	}
	if _, dup := b.seen[p.Key()]; dup {
		return Duplicate
	}
	if b.perCorpusCap > 0 && b.perCorpus[p.Corpus()] >= b.perCorpusCap {
		return CorpusCapReached
	}
	if b.budgetChars > 0 && b.ctx.size+p.Size() > b.budgetChars {
		b.closed = true
		return BudgetExhausted
	}

	b.seen[p.Key()] = struct{}{}
	b.perCorpus[p.Corpus()]++
	b.ctx.passages = append(b.ctx.passages, p)
	b.ctx.size += p.Size()
	return Added
}

// Context returns the assembled context.
func (b *Builder) Context() Context { return b.ctx }
