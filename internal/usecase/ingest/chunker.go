package ingest

import (
	"regexp"
	"strings"
)

// sentenceRe splits text into sentence-like units on terminal punctuation.
var sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?]+)`)

// chunker splits text into character-bounded chunks along sentence
// boundaries, with a character overlap carried between adjacent chunks.
type chunker struct {
	chunkSize    int
	chunkOverlap int
}

func newChunker(chunkSize, chunkOverlap int) *chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Split accumulates sentences until adding the next one would exceed the
// chunk size, then starts a new chunk seeded with the tail of the previous
// one. A single sentence longer than the chunk size becomes its own chunk.
func (c *chunker) Split(text string) []string {
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		sentences = []string{trimmed}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}

	var chunks []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		chunk := cur.String()
		chunks = append(chunks, chunk)
		cur.Reset()

		// seed the next chunk with the tail of this one
		if c.chunkOverlap > 0 && len(chunk) > c.chunkOverlap {
			cur.WriteString(chunk[len(chunk)-c.chunkOverlap:])
		}
	}

	for _, s := range sentences {
		if s == "" {
			continue
		}
		if cur.Len() > 0 && cur.Len()+1+len(s) > c.chunkSize {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(s)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}

	return chunks
}
