// Package api exposes the question selector over HTTP and websockets.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/p-n-ai/stemblast/internal/catalog"
	"github.com/p-n-ai/stemblast/internal/events"
	"github.com/p-n-ai/stemblast/internal/quiz"
	"github.com/p-n-ai/stemblast/internal/session"
)

const defaultHistoryLimit = 20

// Server handles quiz requests.
type Server struct {
	selector       *quiz.Selector
	locator        *quiz.Locator
	catalog        *catalog.Catalog
	sessions       session.Store
	events         events.Logger
	historyLimit   int
	originPatterns []string
}

// Option configures a Server.
type Option func(*Server)

// WithCatalog sets the catalog served at /api/catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Server) { s.catalog = c }
}

// WithLocator sets the locator used to label events with bank keys.
func WithLocator(l *quiz.Locator) Option {
	return func(s *Server) { s.locator = l }
}

// WithSessions enables server-side session history.
func WithSessions(store session.Store) Option {
	return func(s *Server) { s.sessions = store }
}

// WithEvents records served questions.
func WithEvents(l events.Logger) Option {
	return func(s *Server) { s.events = l }
}

// WithHistoryLimit bounds the history considered per request.
func WithHistoryLimit(n int) Option {
	return func(s *Server) { s.historyLimit = n }
}

// WithAllowedOrigins sets the origins allowed to open websockets. Entries
// may be full origins ("https://quiz.example") or host patterns.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.originPatterns = originPatterns(origins) }
}

// New creates a Server around selector.
func New(selector *quiz.Selector, opts ...Option) *Server {
	s := &Server{
		selector:     selector,
		locator:      quiz.NewLocator(nil),
		catalog:      catalog.Default(),
		events:       events.NopLogger{},
		historyLimit: defaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds the API routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/quiz", s.handleQuiz)
	mux.HandleFunc("GET /api/quiz/ws", s.handleQuizWS)
	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	req, err := decodeRequest(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	requestID := uuid.NewString()
	q := s.serve(r.Context(), requestID, req, nil)

	w.Header().Set("X-Request-ID", requestID)
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog)
}

// serve selects one question for req. connHistory is history already held
// by the caller, such as questions sent earlier on the same websocket.
func (s *Server) serve(ctx context.Context, requestID string, req quizRequest, connHistory []string) quiz.ResolvedQuestion {
	remembered := connHistory
	if s.sessions != nil && req.SessionID != "" {
		stored, err := s.sessions.Recent(ctx, req.SessionID)
		if err != nil {
			slog.Warn("session history unavailable", "request_id", requestID, "error", err)
		}
		remembered = session.Merge(stored, connHistory, s.historyLimit)
	}

	subject := req.Subject
	if subject == "" {
		subject = quiz.DefaultSubject
	}
	c := quiz.SelectionCriteria{
		Grade:      req.Level,
		Subject:    subject,
		Difficulty: quiz.ParseDifficulty(req.Difficulty),
		History:    session.Merge(remembered, req.History, s.historyLimit),
	}

	q := s.selector.SelectQuestion(ctx, c)

	if !q.Placeholder && s.sessions != nil && req.SessionID != "" {
		if err := s.sessions.Append(ctx, req.SessionID, q.Question); err != nil {
			slog.Warn("session history not saved", "request_id", requestID, "error", err)
		}
	}
	s.record(ctx, requestID, req, c, q)
	return q
}

func (s *Server) record(ctx context.Context, requestID string, req quizRequest, c quiz.SelectionCriteria, q quiz.ResolvedQuestion) {
	eventType := events.TypeServed
	if q.Placeholder {
		eventType = events.TypeFallback
	}
	var sessionHash string
	if req.SessionID != "" {
		sessionHash = session.HashID(req.SessionID)
	}

	knownLevel := s.catalog.HasLevel(c.Grade)
	if !knownLevel {
		slog.Info("level not in catalog", "request_id", requestID, "level", c.Grade)
	}

	key := s.locator.Locate(c.Grade, c.Subject, string(c.Difficulty))
	ev := events.Event{
		RequestID:   requestID,
		SessionHash: sessionHash,
		EventType:   eventType,
		BankKey:     key.Primary,
		Data: map[string]any{
			"level":       c.Grade,
			"subject":     c.Subject,
			"difficulty":  string(c.Difficulty),
			"history_len": len(c.History),
			"type":        q.Type,
			"known_level": knownLevel,
		},
	}
	if err := s.events.LogEvent(ctx, ev); err != nil {
		slog.Warn("event not recorded", "request_id", requestID, "error", err)
	}
}

// originPatterns reduces configured origins to the host patterns the
// websocket library matches against.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			o = u.Host
		}
		out = append(out, o)
	}
	return out
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("response write failed", "error", err)
	}
}
