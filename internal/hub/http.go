package hub

import (
	"encoding/json"
	"io"
	"net/http"
)

const maxTextBody = 1 << 20

// textPayload is the body of PATCH /data and GET /text.
type textPayload struct {
	Text string `json:"text"`
}

// RegisterRoutes wires the hub endpoints onto mux.
func (h *Hub) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/data", h.handleData)
	mux.HandleFunc("/text", h.handleText)
}

// Handler returns a mux serving the hub endpoints.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

// handleData serves the latest sample and accepts written-back text.
func (h *Hub) handleData(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		latest := h.Latest()
		if len(latest) == 0 {
			latest = []byte("{}")
		}
		_, _ = w.Write(latest)
	case http.MethodPatch:
		var body textPayload
		if err := json.NewDecoder(io.LimitReader(r.Body, maxTextBody)).Decode(&body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		h.SetText(body.Text)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleText returns the most recently copied text.
func (h *Hub) handleText(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(textPayload{Text: h.Text()})
}

// setCORS allows any origin, as the mobile page is served elsewhere.
func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, PATCH, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "*")
}
