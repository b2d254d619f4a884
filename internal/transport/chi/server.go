// Package chi implements the HTTP API on the chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jurex/internal/domain"
	domanswer "github.com/kailas-cloud/jurex/internal/domain/answer"
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	"github.com/kailas-cloud/jurex/internal/domain/plan"
	"github.com/kailas-cloud/jurex/internal/domain/query"
	"github.com/kailas-cloud/jurex/internal/metrics"
	answeruc "github.com/kailas-cloud/jurex/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/jurex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/jurex/internal/usecase/ingest"
	statsuc "github.com/kailas-cloud/jurex/internal/usecase/stats"
)

// Engine answers and analyzes queries.
type Engine interface {
	Answer(ctx context.Context, q query.Query) (domanswer.Answer, error)
	Analyze(ctx context.Context, q query.Query) answeruc.Analysis
}

// Ingestor loads documents into the corpora.
type Ingestor interface {
	IngestPDF(ctx context.Context, raw []byte, title string) (string, int, error)
	IngestCase(ctx context.Context, docID, caseTitle string, sections ingestuc.CaseSections) (int, error)
}

// StatsTracker exposes the usage counters and records queries rejected
// before they reach the engine.
type StatsTracker interface {
	Snapshot() statsuc.Snapshot
	RecordQuery(ctx context.Context)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// CorpusCounter counts stored chunks per corpus.
type CorpusCounter interface {
	Count(ctx context.Context, c corpus.Corpus) (int, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements the HTTP API.
type Server struct {
	engine         Engine
	ingestor       Ingestor
	stats          StatsTracker
	health         HealthChecker
	counter        CorpusCounter
	maxUploadBytes int64
	logger         *zap.Logger
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	engine Engine,
	ingestor Ingestor,
	stats StatsTracker,
	health HealthChecker,
	counter CorpusCounter,
	maxUploadBytes int64,
	logger *zap.Logger,
) *Server {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	s := &Server{
		engine:         engine,
		ingestor:       ingestor,
		stats:          stats,
		health:         health,
		counter:        counter,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrIngestion, http.StatusUnprocessableEntity, "ingestion_failed"),
		sentinelHandler(domain.ErrSynthesis, http.StatusBadGateway, "synthesis_failed"),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrGenerationProvider, http.StatusBadGateway, "generation_provider_error"),
		sentinelHandler(domain.ErrCorpusUnreachable, http.StatusServiceUnavailable, "corpus_unreachable"),
	}
	return s
}

// Mount registers all API routes on the router.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Post("/query/analyze", s.handleAnalyze)
		r.Get("/stats", s.handleStats)
		r.Get("/database/test", s.handleDatabaseTest)
		r.Post("/documents/upload", s.handleUpload)
		r.Post("/cases", s.handleIngestCase)
	})
}

type queryRequest struct {
	Query string `json:"query"`
	Debug bool   `json:"debug,omitempty"`
}

type planDTO struct {
	LegalDocs []string `json:"legal_docs"`
	Cases     []string `json:"cases"`
}

type debugInfoDTO struct {
	SubQueries    map[string]int   `json:"sub_queries"`
	Retrieved     map[string]int   `json:"retrieved"`
	FailedCorpora []string         `json:"failed_corpora,omitempty"`
	ContextChars  int              `json:"context_chars"`
	ContextCount  int              `json:"context_passages"`
	Passages      []usedPassageDTO `json:"passages,omitempty"`
}

type usedPassageDTO struct {
	Corpus   string  `json:"corpus"`
	SourceID string  `json:"source_id"`
	Title    string  `json:"title,omitempty"`
	Score    float64 `json:"score"`
}

type queryResponse struct {
	Answer    string        `json:"answer"`
	QueryPlan *planDTO      `json:"query_plan,omitempty"`
	DebugInfo *debugInfoDTO `json:"debug_info,omitempty"`
}

// handleQuery handles POST /api/query.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	q, err := query.New(req.Query, req.Debug)
	if err != nil {
		// Rejected queries still count toward total_queries; the
		// engine never sees them.
		s.stats.RecordQuery(r.Context())
		metrics.QueriesTotal.WithLabelValues("validation_failed").Inc()
		s.handleDomainError(w, err)
		return
	}

	ans, err := s.engine.Answer(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := queryResponse{Answer: ans.Text}
	if q.Debug() {
		resp.QueryPlan = planToDTO(ans.Plan)
		resp.DebugInfo = debugToDTO(ans.Debug)
	}
	writeJSON(w, http.StatusOK, resp)
}

type analyzeResponse struct {
	Query               string   `json:"query"`
	LegalDocsQueries    []string `json:"legal_docs_queries"`
	CasesQueries        []string `json:"cases_queries"`
	WillSearchLegalDocs bool     `json:"will_search_legal_docs"`
	WillSearchCases     bool     `json:"will_search_cases"`
}

// handleAnalyze handles POST /api/query/analyze: the plan without execution.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	q, err := query.New(req.Query, false)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	a := s.engine.Analyze(r.Context(), q)
	writeJSON(w, http.StatusOK, analyzeResponse{
		Query:               q.Text(),
		LegalDocsQueries:    orEmpty(a.Plan.SubQueries(corpus.LegalDocs)),
		CasesQueries:        orEmpty(a.Plan.SubQueries(corpus.Cases)),
		WillSearchLegalDocs: a.WillSearchLegalDocs,
		WillSearchCases:     a.WillSearchCases,
	})
}

type statsResponse struct {
	TotalQueries       int64 `json:"total_queries"`
	DocumentsProcessed int64 `json:"documents_processed"`
	CasesIngested      int64 `json:"cases_ingested"`
}

// handleStats handles GET /api/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.stats.Snapshot()
	writeJSON(w, http.StatusOK, statsResponse{
		TotalQueries:       snap.TotalQueries,
		DocumentsProcessed: snap.DocumentsProcessed,
		CasesIngested:      snap.CasesIngested,
	})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	writeJSON(w, httpStatus, map[string]any{
		"status": string(report.Status),
		"checks": checks,
	})
}

// handleDatabaseTest handles GET /api/database/test: connectivity plus
// per-corpus chunk counts.
func (s *Server) handleDatabaseTest(w http.ResponseWriter, r *http.Request) {
	counts := make(map[string]int, 2)
	for _, c := range corpus.All() {
		n, err := s.counter.Count(r.Context(), c)
		if err != nil {
			s.logger.Warn("corpus count failed", zap.String("corpus", string(c)), zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status":  "error",
				"message": "corpus store unreachable",
			})
			return
		}
		counts[string(c)] = n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"chunks": counts,
	})
}

type uploadResponse struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Chunks     int    `json:"chunks"`
}

// handleUpload handles POST /api/documents/upload (multipart, PDF only).
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "A 'file' form field is required")
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".pdf" {
		writeError(w, http.StatusBadRequest, "validation_failed", "Only PDF files are supported")
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Failed to read file: "+err.Error())
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	docID, chunks, err := s.ingestor.IngestPDF(r.Context(), raw, title)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		DocumentID: docID,
		Title:      title,
		Chunks:     chunks,
	})
}

type ingestCaseRequest struct {
	DocID     string `json:"doc_id,omitempty"`
	CaseTitle string `json:"case_title"`
	Sections  struct {
		Facts      string `json:"facts,omitempty"`
		Issues     string `json:"issues,omitempty"`
		Reasoning  string `json:"reasoning,omitempty"`
		Conclusion string `json:"conclusion,omitempty"`
	} `json:"sections"`
}

// handleIngestCase handles POST /api/cases.
func (s *Server) handleIngestCase(w http.ResponseWriter, r *http.Request) {
	var req ingestCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.CaseTitle) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "case_title is required")
		return
	}

	chunks, err := s.ingestor.IngestCase(r.Context(), req.DocID, req.CaseTitle, ingestuc.CaseSections{
		Facts:      req.Sections.Facts,
		Issues:     req.Sections.Issues,
		Reasoning:  req.Sections.Reasoning,
		Conclusion: req.Sections.Conclusion,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"case_title": req.CaseTitle,
		"chunks":     chunks,
	})
}

func planToDTO(p plan.Plan) *planDTO {
	return &planDTO{
		LegalDocs: orEmpty(p.SubQueries(corpus.LegalDocs)),
		Cases:     orEmpty(p.SubQueries(corpus.Cases)),
	}
}

func debugToDTO(d *domanswer.DebugInfo) *debugInfoDTO {
	if d == nil {
		return nil
	}
	out := &debugInfoDTO{
		SubQueries:   make(map[string]int, len(d.SubQueries)),
		Retrieved:    make(map[string]int, len(d.Retrieved)),
		ContextChars: d.ContextSize,
		ContextCount: d.ContextLen,
	}
	for c, n := range d.SubQueries {
		out.SubQueries[string(c)] = n
	}
	for c, n := range d.Retrieved {
		out.Retrieved[string(c)] = n
	}
	for _, c := range d.FailedCorpora {
		out.FailedCorpora = append(out.FailedCorpora, string(c))
	}
	for _, p := range d.Passages {
		out.Passages = append(out.Passages, usedPassageDTO{
			Corpus:   string(p.Corpus),
			SourceID: p.SourceID,
			Title:    p.Title,
			Score:    p.Score,
		})
	}
	return out
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrIngestion,
		domain.ErrSynthesis,
		domain.ErrEmbeddingProvider,
		domain.ErrGenerationProvider,
		domain.ErrCorpusUnreachable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
