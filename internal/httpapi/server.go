package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mpetrov/gptrelay/internal/observability"
	"github.com/mpetrov/gptrelay/internal/relay"
	"github.com/mpetrov/gptrelay/internal/telegram"
)

// Processor runs the relay pipeline for one inbound update.
type Processor interface {
	Process(ctx context.Context, update telegram.Update) relay.Outcome
}

type Server struct {
	pipeline   Processor
	storeMode  string
	configured bool
}

func New(pipeline Processor, storeMode string, configured bool) *Server {
	return &Server{
		pipeline:   pipeline,
		storeMode:  storeMode,
		configured: configured,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Constant liveness body for the hosting platform's probe.
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/telegram", s.handleWebhook)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"store_mode": s.storeMode,
		"configured": s.configured,
	})
}

// handleWebhook acknowledges the platform immediately and runs the pipeline
// on its own goroutine. Telegram must never see a failure or a slow response
// here, or it will retry-storm the endpoint; every downstream problem is
// handled inside the pipeline instead.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("httpapi: undecodable webhook payload: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusOK)

	// The request context dies with the ack, so the pipeline runs detached.
	go func() {
		_ = s.pipeline.Process(context.Background(), update)
	}()
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
