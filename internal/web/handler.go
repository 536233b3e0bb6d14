// Package web serves the preprocessed output directory for previewing, plus a
// small JSON status endpoint for build tooling.
package web

import (
	"encoding/json"
	"net/http"
	"time"
)

// Status is the build summary exposed at /api/status.
type Status struct {
	InputDir  string    `json:"input_dir"`
	OutputDir string    `json:"output_dir"`
	Processed int       `json:"processed"`
	Copied    int       `json:"copied"`
	Failed    int       `json:"failed"`
	LastBuild time.Time `json:"last_build"`
}

// Handler serves the output directory and the status API.
type Handler struct {
	files  http.Handler
	status func() Status
}

// NewHandler creates a handler rooted at outputDir. status is polled on each
// /api/status request.
func NewHandler(outputDir string, status func() Status) *Handler {
	return &Handler{
		files:  http.FileServer(http.Dir(outputDir)),
		status: status,
	}
}

// ServeHTTP routes the status API and falls through to the file server.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/status" {
		h.serveStatus(w, r)
		return
	}
	h.files.ServeHTTP(w, r)
}

func (h *Handler) serveStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error": "method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.status())
}
