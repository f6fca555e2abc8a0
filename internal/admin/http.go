// Package admin exposes the server's observability and tuning surface:
// health, metrics, active/recent sessions, live config, and a websocket
// feed for a dashboard. None of it sits on the robot TCP protocol's hot
// path; a bug here must never be able to stall or corrupt an in-flight
// session.
package admin

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"robotctl/internal/config"
	"robotctl/internal/registry"
)

// Handler bundles the dependencies the admin HTTP surface reads from.
type Handler struct {
	registry *registry.Registry
	store    *config.Store
	hub      *Hub
	log      *zap.SugaredLogger
}

// NewHandler constructs a Handler. hub may be nil if the websocket feed is
// disabled.
func NewHandler(reg *registry.Registry, store *config.Store, hub *Hub, log *zap.SugaredLogger) *Handler {
	return &Handler{registry: reg, store: store, hub: hub, log: log}
}

// Mux builds an *http.ServeMux wired with every admin route.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealthz)
	mux.HandleFunc("/metrics", h.handleMetrics)
	mux.HandleFunc("/admin/config", h.handleConfig)
	mux.HandleFunc("/admin/sessions", h.handleSessions)
	if h.hub != nil {
		mux.HandleFunc("/ws", h.hub.HandleWS)
	}
	return mux
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.registry.Metrics().Snapshot())
}

func (h *Handler) handleSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"active": h.registry.ActiveSessions(),
		"recent": h.registry.RecentSessions(),
	})
}

// handleConfig serves the live-tunable config subset: GET returns the
// current values, POST merges a partial JSON payload into them.
func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, h.store.Current())
	case http.MethodPost:
		var patch config.TunablePatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		cur := h.store.Apply(patch)
		h.log.Infow("admin config updated",
			"normal_timeout", cur.NormalTimeout,
			"recharge_timeout", cur.RechargeTimeout,
			"target_x", cur.TargetX,
			"target_y", cur.TargetY,
		)
		writeJSON(w, cur)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
