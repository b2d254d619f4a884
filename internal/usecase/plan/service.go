package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jurex/internal/domain"
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	domplan "github.com/kailas-cloud/jurex/internal/domain/plan"
	"github.com/kailas-cloud/jurex/internal/logger"
	"github.com/kailas-cloud/jurex/internal/metrics"
)

// Service produces a validated search plan for a raw query.
//
// The primary path asks the generative backend to classify the query; its
// output is schema-validated before use. Any backend failure, malformed
// response, or fully-empty plan falls back to a deterministic keyword
// heuristic, so planning itself never fails.
type Service struct {
	gen          Generator
	maxPerCorpus int
}

// New creates a planner service. maxPerCorpus bounds the number of
// sub-queries kept per corpus.
func New(gen Generator, maxPerCorpus int) *Service {
	if maxPerCorpus <= 0 {
		maxPerCorpus = 3
	}
	return &Service{gen: gen, maxPerCorpus: maxPerCorpus}
}

// Plan routes the query text across the corpora.
func (s *Service) Plan(ctx context.Context, text string) domplan.Plan {
	log := logger.FromContext(ctx)

	if s.gen != nil {
		p, err := s.planLLM(ctx, text)
		if err == nil && !p.IsEmpty() {
			metrics.PlanRequestsTotal.WithLabelValues("llm").Inc()
			return p
		}
		if err != nil {
			log.Warn("query classification failed, using heuristic routing", zap.Error(err))
			metrics.PlanRequestsTotal.WithLabelValues("heuristic").Inc()
		} else {
			// structurally valid but routed nowhere
			metrics.PlanRequestsTotal.WithLabelValues("fallback").Inc()
		}
	} else {
		metrics.PlanRequestsTotal.WithLabelValues("heuristic").Inc()
	}

	return heuristicPlan(text)
}

// planLLM asks the backend to classify the query and validates the result.
func (s *Service) planLLM(ctx context.Context, text string) (domplan.Plan, error) {
	res, err := s.gen.Generate(ctx, domain.GenerationRequest{
		Prompt:      plannerPrompt + text + "\n\nJSON Output:",
		Temperature: 0,
	})
	if err != nil {
		return domplan.Plan{}, fmt.Errorf("classify query: %w", err)
	}

	return s.parsePlanResponse(res.Text)
}

// parsePlanResponse validates the backend output against the expected
// two-key schema and builds a plan from it.
func (s *Service) parsePlanResponse(text string) (domplan.Plan, error) {
	raw := stripMarkdownFences(text)

	// Pointers distinguish "present but empty" from "missing key".
	var parsed struct {
		LegalDocs *[]string `json:"legal_docs"`
		Cases     *[]string `json:"cases"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return domplan.Plan{}, fmt.Errorf("parse plan JSON: %w", err)
	}
	if parsed.LegalDocs == nil || parsed.Cases == nil {
		return domplan.Plan{}, fmt.Errorf("plan JSON missing corpus keys")
	}

	p := domplan.New()
	s.addAll(&p, corpus.LegalDocs, *parsed.LegalDocs)
	s.addAll(&p, corpus.Cases, *parsed.Cases)
	return p, nil
}

func (s *Service) addAll(p *domplan.Plan, c corpus.Corpus, subqueries []string) {
	for _, sq := range subqueries {
		if p.Count(c) >= s.maxPerCorpus {
			return
		}
		p.Add(c, strings.TrimSpace(sq))
	}
}

// stripMarkdownFences removes a surrounding ```json ... ``` block if the
// backend ignored the bare-JSON instruction.
func stripMarkdownFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
