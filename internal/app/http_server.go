package app

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/frudas24/touchrelay/internal/bridge"
)

type cursorResponse struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ScrollTop float64 `json:"scrollTop"`
}

// RegisterRoutes wires the control API onto the mux.
func (a *App) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", a.handleStatus)
	mux.HandleFunc("/api/toggle", a.handleToggle)
	mux.HandleFunc("/api/cursor", a.handleCursor)
	mux.HandleFunc("/favicon.ico", handleFavicon)
}

// handleStatus reports the transport mode and liveness.
func (a *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.writeRequest(w, bridge.Message{Type: bridge.TypeGetStatus})
}

// handleToggle switches between push and pull.
func (a *App) handleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.writeRequest(w, bridge.Message{Type: bridge.TypeToggleConnection})
}

// handleCursor reports the simulated cursor and scroll accumulator.
func (a *App) handleCursor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p := a.sim.Cursor()
	writeJSON(w, cursorResponse{X: p.X, Y: p.Y, ScrollTop: a.sim.ScrollTop()})
}

// writeRequest sends a control message over the bridge and writes the answer.
func (a *App) writeRequest(w http.ResponseWriter, msg bridge.Message) {
	resp, err := a.bridge.Request(msg)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, bridge.ErrNoController) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, resp)
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// handleFavicon avoids noisy 404s for the default browser request.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
