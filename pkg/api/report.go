package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"nodepanel/pkg/logger"
	"nodepanel/pkg/model"
	"nodepanel/pkg/report"
)

type ReportHandler struct {
	Reconciler *report.Reconciler
	Log        *logger.Logger
	validate   *validator.Validate
}

func NewReportHandler(rec *report.Reconciler, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		Reconciler: rec,
		Log:        log,
		validate:   validator.New(),
	}
}

func (h *ReportHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/node/report", h.handleReport)
}

// handleReport is the endpoint nodes POST their periodic status to.
// Field validation runs before any row lookup.
func (h *ReportHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "missing or malformed fields", http.StatusBadRequest)
		return
	}

	result, err := h.Reconciler.Process(report.Params{
		NodeName:      req.NodeName,
		Email:         req.Email,
		Token:         req.Token,
		Bandwidth:     *req.CurrentBandwidth,
		Traffic:       *req.ReportedTraffic,
		Connections:   *req.ConnectionCount,
		Online:        req.Status == model.StatusOnline,
		TierBandwidth: req.TierBandwidth,
	})
	if err != nil {
		h.Log.Warnw("report rejected", "node", req.NodeName, "owner", req.Email, "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
