// Package query defines the validated user query value object.
package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/jurex/internal/domain"
)

// Query is an immutable user query.
type Query struct {
	text  string
	debug bool
}

// New validates and creates a Query. Text must be non-empty after trimming.
func New(text string, debug bool) (Query, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Query{}, fmt.Errorf("query text is required: %w", domain.ErrValidation)
	}
	return Query{text: trimmed, debug: debug}, nil
}

// Text returns the trimmed query text.
func (q Query) Text() string { return q.text }

// Debug reports whether diagnostic output was requested.
func (q Query) Debug() bool { return q.debug }
