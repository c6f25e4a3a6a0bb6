package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"nodepanel/pkg/logger"
	"nodepanel/pkg/sweep"
)

// Hub fans sweep snapshots out to connected dashboard clients.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[*websocket.Conn]struct{}
	Log      *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: map[*websocket.Conn]struct{}{},
		Log:  log,
	}
}

func (h *Hub) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/stats/ws", h.handleSubscribe)
}

func (h *Hub) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warnw("ws upgrade failed", "err", err)
		return
	}
	h.mu.Lock()
	h.subs[c] = struct{}{}
	h.mu.Unlock()
	h.Log.Infow("dashboard subscriber connected", "remote", r.RemoteAddr)
	go h.readLoop(c)
}

// readLoop drains client frames until disconnect; dashboards only
// listen, so anything received is ignored.
func (h *Hub) readLoop(c *websocket.Conn) {
	defer func() {
		c.Close()
		h.mu.Lock()
		delete(h.subs, c)
		h.mu.Unlock()
	}()
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast pushes one snapshot to every subscriber, dropping
// connections that fail to write.
func (h *Hub) Broadcast(snap sweep.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.subs {
		if err := c.WriteJSON(snap); err != nil {
			_ = c.Close()
			delete(h.subs, c)
		}
	}
}
