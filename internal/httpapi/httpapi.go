// Package httpapi exposes the Synthesizer Facade over HTTP: the
// audio_query/accent_phrases/synthesis/speakers/version surface (§6),
// built the way internal/server/server.go wires net/http — functional
// options, a worker-pool semaphore, and structured slog logging.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/example/voicekit/internal/archive"
	"github.com/example/voicekit/internal/phrase"
	"github.com/example/voicekit/internal/registry"
)

// Server wraps the HTTP handler with graceful shutdown, the way
// internal/server/server.go's Server does for the original tts service.
type Server struct {
	addr            string
	engine          Engine
	shutdownTimeout time.Duration
	opts            []Option
}

// New returns a Server bound to addr, serving engine.
func New(addr string, engine Engine, optFns ...Option) *Server {
	return &Server{
		addr:            addr,
		engine:          engine,
		shutdownTimeout: 30 * time.Second,
		opts:            optFns,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

// Start runs the HTTP server until ctx is cancelled, then drains
// in-flight requests for up to the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           NewHandler(s.engine, s.opts...),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}

		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("http listen: %w", err)
	}
}

// ProbeVersion does a liveness check against a running Server's
// /version endpoint.
func ProbeVersion(addr string) error {
	resp, err := http.Get("http://" + addr + "/version") //nolint:noctx
	if err != nil {
		return err
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected version status: %s", resp.Status)
	}

	return nil
}

// ParseLogLevel converts a case-insensitive level string to slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Engine is the subset of *synth.Synthesizer the HTTP layer depends
// on, narrowed to an interface so handlers can be tested against a
// fake with no loaded ONNX models.
type Engine interface {
	Metas() []archive.SpeakerMeta
	AudioQuery(ctx context.Context, text string, sid registry.StyleID, useKana bool) (phrase.AudioQuery, error)
	CreateAccentPhrases(ctx context.Context, text string, sid registry.StyleID, useKana bool) ([]phrase.AccentPhrase, error)
	Synthesis(ctx context.Context, query phrase.AudioQuery, sid registry.StyleID, enableInterrogativeUpspeak bool) ([]byte, error)
}

type options struct {
	workers        int
	requestTimeout time.Duration
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		workers:        2,
		requestTimeout: 60 * time.Second,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithWorkers sets the maximum number of concurrent synthesis calls.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets the per-request synthesis deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

type handler struct {
	engine Engine
	opts   options
	sem    chan struct{}
	log    *slog.Logger
}

// NewHandler returns an http.Handler serving /version, /speakers,
// /audio_query, /accent_phrases and /synthesis.
func NewHandler(engine Engine, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{engine: engine, opts: opts, log: opts.logger}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/version", h.handleVersion)
	mux.HandleFunc("/speakers", h.handleSpeakers)
	mux.HandleFunc("/audio_query", h.handleAudioQuery)
	mux.HandleFunc("/accent_phrases", h.handleAccentPhrases)
	mux.HandleFunc("/synthesis", h.handleSynthesis)

	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "dev"
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": buildVersion()})
}

func (h *handler) handleSpeakers(w http.ResponseWriter, _ *http.Request) {
	metas := h.engine.Metas()
	if metas == nil {
		metas = []archive.SpeakerMeta{}
	}

	writeJSON(w, http.StatusOK, metas)
}

func (h *handler) handleAudioQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	text, sid, useKana, ok := h.parseTextQuery(w, r)
	if !ok {
		return
	}

	if !h.acquireWorker(r.Context(), w) {
		return
	}
	if h.sem != nil {
		defer func() { <-h.sem }()
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	query, err := h.engine.AudioQuery(ctx, text, sid, useKana)
	if err != nil {
		h.writeEngineError(w, r, "audio_query failed", err)
		return
	}

	writeJSON(w, http.StatusOK, query)
}

func (h *handler) handleAccentPhrases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	text, sid, useKana, ok := h.parseTextQuery(w, r)
	if !ok {
		return
	}

	if !h.acquireWorker(r.Context(), w) {
		return
	}
	if h.sem != nil {
		defer func() { <-h.sem }()
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	phrases, err := h.engine.CreateAccentPhrases(ctx, text, sid, useKana)
	if err != nil {
		h.writeEngineError(w, r, "accent_phrases failed", err)
		return
	}

	writeJSON(w, http.StatusOK, phrases)
}

func (h *handler) handleSynthesis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return
	}

	sid, err := parseStyleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	upspeak := true
	if v := r.URL.Query().Get("enable_interrogative_upspeak"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid enable_interrogative_upspeak: "+err.Error())
			return
		}
		upspeak = b
	}

	var query phrase.AudioQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if !h.acquireWorker(r.Context(), w) {
		return
	}
	if h.sem != nil {
		defer func() { <-h.sem }()
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	start := time.Now()
	wav, err := h.engine.Synthesis(ctx, query, sid, upspeak)
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		h.log.ErrorContext(r.Context(), "synthesis failed",
			slog.Int("style_id", int(sid)),
			slog.Int64("duration_ms", durationMS),
			slog.String("error", err.Error()),
		)
		h.writeEngineError(w, r, "synthesis failed", err)

		return
	}

	h.log.InfoContext(r.Context(), "synthesis complete",
		slog.Int("style_id", int(sid)),
		slog.Int64("duration_ms", durationMS),
		slog.Int("wav_bytes", len(wav)),
	)

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wav)
}

func (h *handler) parseTextQuery(w http.ResponseWriter, r *http.Request) (text string, sid registry.StyleID, useKana bool, ok bool) {
	text = r.URL.Query().Get("text")
	if text == "" {
		writeError(w, http.StatusBadRequest, "text query parameter is required")
		return "", 0, false, false
	}

	sid, err := parseStyleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", 0, false, false
	}

	if v := r.URL.Query().Get("is_kana"); v != "" {
		useKana, err = strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid is_kana: "+err.Error())
			return "", 0, false, false
		}
	}

	return text, sid, useKana, true
}

func parseStyleID(r *http.Request) (registry.StyleID, error) {
	v := r.URL.Query().Get("speaker")
	if v == "" {
		return 0, fmt.Errorf("speaker query parameter is required")
	}

	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid speaker id %q: %w", v, err)
	}

	return registry.StyleID(n), nil
}

// writeEngineError maps a voicekiterr/context failure to an HTTP
// status: timeouts to 504, otherwise 422 (the request was well-formed
// but the synthesis pipeline rejected it — e.g. an unknown style).
func (h *handler) writeEngineError(w http.ResponseWriter, r *http.Request, label string, err error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		h.log.WarnContext(r.Context(), label, slog.String("error", err.Error()))
		writeError(w, http.StatusGatewayTimeout, label)

		return
	}

	writeError(w, http.StatusUnprocessableEntity, err.Error())
}

// acquireWorker tries to acquire a worker slot from the semaphore,
// honoring context cancellation while waiting. A nil semaphore (no
// throttling) always succeeds.
func (h *handler) acquireWorker(ctx context.Context, w http.ResponseWriter) bool {
	if h.sem == nil {
		return true
	}

	select {
	case h.sem <- struct{}{}:
		return true
	default:
		h.log.Info("request queued for worker slot")

		select {
		case h.sem <- struct{}{}:
			return true
		case <-ctx.Done():
			writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
			return false
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
