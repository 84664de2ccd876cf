package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geldimmi/geldimmi/internal/completion"
	"github.com/geldimmi/geldimmi/internal/websocket"
)

// QRHandler serves the public endpoints reached by scanning a schedule's QR
// code. Callers are unauthenticated; the token plus the optional access code
// are the only credentials.
type QRHandler struct {
	engine *completion.Engine
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewQRHandler(engine *completion.Engine, hub *websocket.Hub, logger *slog.Logger) *QRHandler {
	return &QRHandler{engine: engine, hub: hub, logger: logger}
}

// View resolves a QR token to the schedule's checklist. The access code, if
// the schedule requires one, comes from the "code" query parameter.
func (h *QRHandler) View(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.PathValue("token"))
	if token == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "schedule not found"})
		return
	}

	view, err := h.engine.Access(token, r.URL.Query().Get("code"), time.Now().UTC())
	if err != nil {
		writeCompletionError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Complete submits a completion for one checklist item.
func (h *QRHandler) Complete(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.PathValue("token"))
	if token == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "schedule not found"})
		return
	}

	var req struct {
		ItemID     int64  `json:"item_id"`
		Name       string `json:"name"`
		AccessCode string `json:"access_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.ItemID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item_id is required"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	result, err := h.engine.Submit(token, req.AccessCode, req.ItemID, req.Name, time.Now().UTC())
	if err != nil {
		writeCompletionError(w, err, h.logger)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(result.OrganizationID, websocket.NewMessage("record", "submitted", result.Record.ID, map[string]any{
			"schedule_id": result.ScheduleID,
			"item_id":     result.Record.ItemID,
		}))
	}

	writeJSON(w, http.StatusCreated, result.Record)
}
