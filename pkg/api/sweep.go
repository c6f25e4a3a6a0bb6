package api

import (
	"net/http"

	"nodepanel/pkg/auth"
	"nodepanel/pkg/logger"
	"nodepanel/pkg/sweep"
)

type SweepHandler struct {
	Sweeper *sweep.Sweeper
	Log     *logger.Logger
}

func (h *SweepHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/sweep", h.handleTrigger)
}

// handleTrigger runs one sweep on demand. Guarded by the service
// credential only; user JWTs are deliberately not accepted here.
func (h *SweepHandler) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !auth.IsServiceCredential(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if err := h.Sweeper.Run(); err != nil {
		http.Error(w, "sweep failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
