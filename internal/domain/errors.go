package domain

import "errors"

var (
	// ErrValidation signals malformed caller input (empty query, unsupported upload).
	ErrValidation = errors.New("validation failed")
	// ErrCorpusUnreachable signals that a corpus store could not serve a search.
	ErrCorpusUnreachable = errors.New("corpus unreachable")
	// ErrSynthesis signals that answer generation failed after exhausting retries.
	ErrSynthesis = errors.New("synthesis failed")
	// ErrIngestion signals a document parse or embedding failure during ingestion.
	ErrIngestion = errors.New("ingestion failed")
	// ErrEmbeddingProvider signals an embedding backend failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrGenerationProvider signals a generative backend failure.
	ErrGenerationProvider = errors.New("generation provider error")
)
