package api

import (
	"net/http"

	"nodepanel/pkg/auth"
	"nodepanel/pkg/history"
	"nodepanel/pkg/model"
	"nodepanel/pkg/store"
)

type StatsHandler struct {
	Store store.Store
}

func (h *StatsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/stats/history", h.handleHistory)
}

// handleHistory returns the four aggregate series plus the last sweep
// timestamp.
func (h *StatsHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.ParseRequest(r); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	out := map[string]interface{}{}
	for _, key := range model.SeriesKeys() {
		raw, _, err := h.Store.GetSetting(key)
		if err != nil {
			http.Error(w, "failed to load history", http.StatusInternalServerError)
			return
		}
		series, err := history.Unmarshal(raw)
		if err != nil {
			series = &history.Series{}
		}
		out[key] = series.Points
	}
	updated, _, _ := h.Store.GetSetting(model.SettingStatsUpdated)
	out["updated_at"] = updated
	writeJSON(w, http.StatusOK, out)
}
