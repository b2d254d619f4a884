package passage

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/jurex/internal/db"
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	dompassage "github.com/kailas-cloud/jurex/internal/domain/passage"
)

// buildHashFields converts a Chunk into a flat map[string]string for HSET.
func buildHashFields(ch dompassage.Chunk) map[string]string {
	m := map[string]string{
		"content":   ch.Content,
		"source_id": ch.SourceID,
		"vector":    vectorToBytes(ch.Vector),
	}
	if ch.Title != "" {
		m["title"] = ch.Title
	}
	if ch.Section != "" {
		m["section"] = ch.Section
	}
	return m
}

// parseKNNResult converts a raw search result into ranked domain passages.
// Entries with no content or a malformed key are skipped.
func parseKNNResult(sr *db.SearchResult, c corpus.Corpus) ([]dompassage.Passage, error) {
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	prefix := keyPrefix(c)
	passages := make([]dompassage.Passage, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		if !strings.HasPrefix(entry.Key, prefix) || entry.Fields["content"] == "" {
			continue
		}

		sourceID := entry.Fields["source_id"]
		if sourceID == "" {
			// old chunks without a source_id fall back to the hash key
			sourceID = strings.TrimPrefix(entry.Key, prefix)
		}

		p, err := dompassage.New(
			c, sourceID,
			entry.Fields["title"], entry.Fields["section"], entry.Fields["content"],
			entry.Score, len(passages)+1,
		)
		if err != nil {
			return nil, fmt.Errorf("parse entry %s: %w", entry.Key, err)
		}
		passages = append(passages, p)
	}

	return passages, nil
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
