package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tkingovr/headergate/api"
	"github.com/tkingovr/headergate/internal/audit"
	"github.com/tkingovr/headergate/internal/guard"
)

// AdminServer exposes audit data and dry-run checks over a JSON API,
// intended for a loopback listener separate from the gateway itself.
type AdminServer struct {
	mux    *http.ServeMux
	logger *slog.Logger
	store  audit.Store
	engine guard.Engine
	addr   string
}

// NewAdminServer creates an admin server.
func NewAdminServer(addr string, store audit.Store, engine guard.Engine, logger *slog.Logger) *AdminServer {
	s := &AdminServer{
		mux:    http.NewServeMux(),
		logger: logger,
		store:  store,
		engine: engine,
		addr:   addr,
	}
	s.registerRoutes()
	return s
}

func (s *AdminServer) registerRoutes() {
	s.mux.HandleFunc("/api/v1/stats", requireMethod(http.MethodGet, s.handleStats))
	s.mux.HandleFunc("/api/v1/records", requireMethod(http.MethodGet, s.handleRecords))
	s.mux.HandleFunc("/api/v1/stream", requireMethod(http.MethodGet, s.handleStream))
	s.mux.HandleFunc("/api/v1/check", requireMethod(http.MethodPost, s.handleCheck))
}

// requireMethod rejects requests whose method does not match, standing in for
// the method-qualified ServeMux patterns that need Go 1.22+.
func requireMethod(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

// ListenAndServe starts the admin HTTP server.
func (s *AdminServer) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.mux,
	}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	s.logger.Info("starting admin server", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the HTTP handler for embedding in tests.
func (s *AdminServer) Handler() http.Handler {
	return s.mux
}

func (s *AdminServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		http.Error(w, "failed to get stats", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (s *AdminServer) handleRecords(w http.ResponseWriter, r *http.Request) {
	q := api.QueryFilter{
		Route:   r.URL.Query().Get("route"),
		Client:  r.URL.Query().Get("client"),
		Outcome: api.Outcome(r.URL.Query().Get("outcome")),
		Limit:   100,
	}

	records, err := s.store.Query(r.Context(), q)
	if err != nil {
		http.Error(w, "failed to query records", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*api.AuditRecord{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// handleStream sends new audit records as server-sent events.
func (s *AdminServer) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	ch, cancel := s.store.Subscribe(r.Context())
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case record, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(record)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *AdminServer) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req api.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	header := http.Header{}
	for name, value := range req.Headers {
		header.Set(name, value)
	}

	input := &guard.EvalInput{
		Method: http.MethodGet,
		Path:   req.Path,
		Header: header,
	}

	result, err := s.engine.Evaluate(r.Context(), input)
	if err != nil {
		http.Error(w, "evaluation error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := api.CheckResponse{
		Outcome: result.Outcome,
		Rule:    result.Rule,
		Message: result.Message,
		Status:  result.Status,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
