package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/polyglot-ai/mocktransport/internal/analyze"
	"github.com/polyglot-ai/mocktransport/internal/config"
	"github.com/polyglot-ai/mocktransport/internal/domain"
	"github.com/polyglot-ai/mocktransport/internal/extract"
	"github.com/polyglot-ai/mocktransport/internal/manager"
)

// Handler serves provider-shaped mock endpoints and the admin API.
type Handler struct {
	manager  *manager.Manager
	analyzer *analyze.Analyzer
	logger   *slog.Logger
}

// NewHandler creates a Handler over a manager and its analyzer.
func NewHandler(m *manager.Manager, a *analyze.Analyzer, logger *slog.Logger) *Handler {
	return &Handler{manager: m, analyzer: a, logger: logger}
}

// Mount registers the provider and admin routes.
func (h *Handler) Mount(r *chi.Mux) {
	r.Post("/v1/chat/completions", h.serveProvider(domain.ProviderOpenAI))
	r.Post("/api/v1/chat/completions", h.serveProvider(domain.ProviderOpenRouter))
	r.Post("/v1beta/models/{model:[^:]+}:generateContent", h.serveProvider(domain.ProviderGoogle))

	r.Get("/admin/log", h.getLog)
	r.Delete("/admin/log", h.clearLog)
	r.Put("/admin/scenario", h.setScenario)
	r.Get("/healthz", h.health)
}

// serveProvider runs one request through the mock pipeline as if it had
// been intercepted on the wire. The request arrives on a local listener, so
// the route decides the provider and the call is dispatched as external:
// the server is standing in for the real third-party API.
func (h *Handler) serveProvider(p domain.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc, err := extract.FromRequest(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		md := h.analyzer.Analyze(rc)
		md.Provider = p
		md.InternalRequest = false
		md.ExternalAPI = true

		resp, err := h.manager.Dispatch(r.Context(), rc, md)
		if err != nil {
			var unexpected *domain.UnexpectedRequestError
			if errors.As(err, &unexpected) {
				writeJSONError(w, http.StatusExpectationFailed, unexpected.Error())
				return
			}
			h.logger.Error("dispatch failed", slog.String("error", err.Error()))
			writeJSONError(w, http.StatusInternalServerError, "mock dispatch failed")
			return
		}

		status := http.StatusOK
		if resp.StatusCode != 0 {
			status = resp.StatusCode
		}
		for name, value := range resp.Headers {
			w.Header().Set(name, value)
		}
		writeJSON(w, status, resp.Body)
	}
}

func (h *Handler) getLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.RequestLog())
}

func (h *Handler) clearLog(w http.ResponseWriter, r *http.Request) {
	h.manager.ClearRequestLog()
	w.WriteHeader(http.StatusNoContent)
}

// setScenario swaps the active scenario from a preset spec in the request
// body.
func (h *Handler) setScenario(w http.ResponseWriter, r *http.Request) {
	var spec config.ScenarioConfig
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid scenario spec: "+err.Error())
		return
	}

	next, err := spec.Build()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.manager.SetScenario(next)
	h.logger.Info("scenario replaced", slog.String("scenario", next.Name()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already written; nothing left to do.
		return
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": map[string]string{"message": message}})
}
