package plan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	domplan "github.com/kailas-cloud/jurex/internal/domain/plan"
)

// statuteRefRe matches explicit statutory references like "Article 21",
// "Section 420", "art. 14", "sec 66A".
var statuteRefRe = regexp.MustCompile(`(?i)\b(article|section|art\.?|sec\.?)\s*(\d+[A-Za-z]?)\b`)

// statuteTerms are standalone words that indicate statutory material.
var statuteTerms = []string{"act", "ipc", "constitution", "statute", "code"}

// caseTerms are words that indicate case-law material.
var caseTerms = []string{
	"case", "cases", "judgment", "judgments", "precedent", "precedents",
	"court", "courts", "interpretation", "interpreted",
}

// heuristicPlan routes a query with a fixed keyword rule. Used when the
// generative classification is unavailable or malformed.
//
// Routing: explicit statutory references become the legal_docs sub-queries
// (normalized, e.g. "Article 21"); a bare statutory term routes the raw
// query to legal_docs; case-law terms route the raw query to cases; a query
// with no signal at all defaults to legal_docs only.
func heuristicPlan(text string) domplan.Plan {
	p := domplan.New()

	refs := statuteRefs(text)
	hasStatuteSignal := len(refs) > 0 || containsAnyWord(text, statuteTerms)
	hasCaseSignal := containsAnyWord(text, caseTerms)

	if len(refs) > 0 {
		for _, ref := range refs {
			p.Add(corpus.LegalDocs, ref)
		}
	} else if hasStatuteSignal || !hasCaseSignal {
		p.Add(corpus.LegalDocs, text)
	}

	if hasCaseSignal {
		p.Add(corpus.Cases, text)
	}

	return p
}

// statuteRefs extracts normalized statutory references from the query text.
func statuteRefs(text string) []string {
	matches := statuteRefRe.FindAllStringSubmatch(text, -1)
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		kind := "Section"
		if strings.HasPrefix(strings.ToLower(m[1]), "art") {
			kind = "Article"
		}
		refs = append(refs, fmt.Sprintf("%s %s", kind, strings.ToUpper(m[2])))
	}
	return refs
}

// containsAnyWord reports whether any of the terms appears in the text as
// a whole word, case-insensitively.
func containsAnyWord(text string, terms []string) bool {
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		for _, term := range terms {
			if w == term {
				return true
			}
		}
	}
	return false
}
