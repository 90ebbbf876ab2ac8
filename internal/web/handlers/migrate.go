package handlers

import (
	"log"
	"net/http"

	"github.com/kozaktomas/face-id/internal/migrate"
)

// MigrateHandler triggers the database-to-store migration over HTTP.
type MigrateHandler struct {
	runner *migrate.Runner
}

// NewMigrateHandler creates a migrate handler. runner may be nil when the
// service runs without a source database configured.
func NewMigrateHandler(runner *migrate.Runner) *MigrateHandler {
	return &MigrateHandler{runner: runner}
}

// Run executes a full migration run and returns its summary.
func (h *MigrateHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		respondError(w, http.StatusServiceUnavailable, "no source database configured")
		return
	}

	summary, err := h.runner.Run(r.Context())
	if err != nil {
		log.Printf("Migration failed: %v", err)
		respondError(w, http.StatusInternalServerError, "migration failed")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
