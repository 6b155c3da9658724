// Package httpapi exposes the pipeline over JSON HTTP routes.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nexxia-ai/reasonchain"
)

// Runner runs one pipeline invocation.
type Runner interface {
	Run(ctx context.Context, prompt string) *reasonchain.Result
}

// Store persists results for the results route.
type Store interface {
	Save(r *reasonchain.Result) (string, error)
	Latest() (*reasonchain.Result, error)
}

type processRequest struct {
	Prompt string `json:"prompt"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const maxRequestBytes = 1 << 20

type handler struct {
	runner Runner
	store  Store
	logger *slog.Logger
}

// NewHandler returns the route layer: POST /api/process and GET /api/results.
// store may be nil, in which case results are not persisted.
func NewHandler(runner Runner, store Store, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{runner: runner, store: store, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/process", h.process)
	mux.HandleFunc("GET /api/results", h.results)
	return mux
}

func (h *handler) process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		h.logger.Debug("invalid process request", "error", err)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Message: "No prompt provided"})
		return
	}

	result := h.runner.Run(r.Context(), req.Prompt)

	if h.store != nil {
		if path, err := h.store.Save(result); err != nil {
			h.logger.Error("failed to save result", "error", err)
		} else {
			h.logger.Debug("result saved", "file", path)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *handler) results(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Status: "error", Message: "Could not load results: no result store configured"})
		return
	}

	result, err := h.store.Latest()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Status:  "error",
			Message: fmt.Sprintf("Could not load results: %v", err),
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
