package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"nodepanel/pkg/auth"
	"nodepanel/pkg/cycle"
	"nodepanel/pkg/discovery"
	"nodepanel/pkg/logger"
	"nodepanel/pkg/model"
	"nodepanel/pkg/store"
)

const defaultValidDays = 365

type NodeHandler struct {
	Store store.Store
	Log   *logger.Logger
	Now   func() time.Time
}

func (h *NodeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/nodes", h.handleNodes)
	mux.HandleFunc("/api/v1/nodes/discover", h.handleDiscover)
	mux.HandleFunc("/api/v1/nodes/", h.handleNodeAction)
}

func (h *NodeHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// handleNodes serves GET (list own nodes, admin sees all) and POST
// (create a node with its initial reset date and a fresh report token).
func (h *NodeHandler) handleNodes(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ParseRequest(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	switch r.Method {
	case http.MethodGet:
		var nodes []model.Node
		var listErr error
		if claims.IsAdmin {
			nodes, listErr = h.Store.ListNodes()
		} else {
			nodes, listErr = h.Store.ListNodesByOwner(claims.Email)
		}
		if listErr != nil {
			http.Error(w, "failed to list nodes", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, nodes)
	case http.MethodPost:
		var req CreateNodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if req.ResetCycle < 0 || req.ResetCycle > 31 {
			http.Error(w, "reset cycle must be 0-31", http.StatusBadRequest)
			return
		}
		validDays := req.ValidDays
		if validDays <= 0 {
			validDays = defaultValidDays
		}
		now := h.now().UTC()
		node := model.Node{
			UserEmail:      claims.Email,
			Name:           req.Name,
			Region:         req.Region,
			IsRelay:        req.IsRelay,
			MaxBandwidth:   req.MaxBandwidth,
			MaxConnections: req.MaxConnections,
			MaxTraffic:     req.MaxTraffic,
			TierBandwidth:  req.TierBandwidth,
			ResetCycle:     req.ResetCycle,
			ResetDate:      cycle.InitialReset(now, req.ResetCycle),
			ValidUntil:     now.AddDate(0, 0, validDays),
			Status:         model.StatusOffline,
			ReportToken:    uuid.NewString(),
		}
		node, err := h.Store.CreateNode(node)
		if err != nil {
			http.Error(w, "failed to create node", http.StatusInternalServerError)
			return
		}
		h.Log.Infow("node created", "node", node.Name, "owner", node.UserEmail,
			"resetDate", node.ResetDate)
		// The token is returned once, on creation and regeneration only.
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"node":        node,
			"reportToken": node.ReportToken,
		})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleNodeAction serves /api/v1/nodes/{id}/token (regenerate report
// token) and /api/v1/nodes/{id}/correction (admin traffic correction).
func (h *NodeHandler) handleNodeAction(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ParseRequest(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/nodes/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	id, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		http.Error(w, "invalid node id", http.StatusBadRequest)
		return
	}
	node, ok, err := h.Store.GetNode(uint(id))
	if err != nil {
		http.Error(w, "node lookup failed", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "node not found", http.StatusNotFound)
		return
	}

	switch parts[1] {
	case "token":
		if node.UserEmail != claims.Email && !claims.IsAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		node.ReportToken = uuid.NewString()
		if err := h.Store.SaveNode(node); err != nil {
			http.Error(w, "failed to update node", http.StatusInternalServerError)
			return
		}
		h.Log.Infow("report token regenerated", "node", node.Name, "by", claims.Email)
		writeJSON(w, http.StatusOK, map[string]string{"reportToken": node.ReportToken})
	case "correction":
		if !claims.IsAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		var req CorrectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CorrectionTraffic < 0 {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		node.CorrectionTraffic = req.CorrectionTraffic
		if err := h.Store.SaveNode(node); err != nil {
			http.Error(w, "failed to update node", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]float64{"displayTraffic": node.DisplayTraffic()})
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// handleDiscover is unauthenticated: clients ask for up to three
// candidate nodes, optionally filtered and ranked.
func (h *NodeHandler) handleDiscover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	priority := discovery.Priority(q.Get("priority"))
	switch priority {
	case discovery.PriorityNone, discovery.PriorityTraffic, discovery.PriorityBandwidth, discovery.PriorityLatency:
	default:
		http.Error(w, "unknown priority", http.StatusBadRequest)
		return
	}
	nodes, err := h.Store.ListNodes()
	if err != nil {
		http.Error(w, "failed to list nodes", http.StatusInternalServerError)
		return
	}
	picked := discovery.Pick(nodes, q.Get("region"), q.Get("relay") == "true", priority, h.now().UTC())
	writeJSON(w, http.StatusOK, picked)
}
