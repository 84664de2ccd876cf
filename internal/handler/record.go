package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/geldimmi/geldimmi/internal/auth"
	"github.com/geldimmi/geldimmi/internal/completion"
	"github.com/geldimmi/geldimmi/internal/model"
	"github.com/geldimmi/geldimmi/internal/plan"
	"github.com/geldimmi/geldimmi/internal/store"
	"github.com/geldimmi/geldimmi/internal/websocket"
)

type RecordHandler struct {
	engine      *completion.Engine
	recordStore *store.RecordStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewRecordHandler(engine *completion.Engine, rs *store.RecordStore, hub *websocket.Hub, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{engine: engine, recordStore: rs, hub: hub, logger: logger}
}

// ListPending returns the organization's records awaiting review, oldest
// first.
func (h *RecordHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrganizationID(r.Context())

	records, err := h.recordStore.ListPendingByOrganization(organizationID)
	if err != nil {
		h.logger.Error("list pending records", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list records"})
		return
	}
	if records == nil {
		records = []model.CompletionRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *RecordHandler) Approve(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrganizationID(r.Context())
	reviewerID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	record, err := h.engine.Approve(organizationID, id, reviewerID, time.Now().UTC())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(organizationID, websocket.NewMessage("record", "approved", record.ID, nil))
	}

	writeJSON(w, http.StatusOK, record)
}

func (h *RecordHandler) Reject(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrganizationID(r.Context())
	reviewerID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	// An empty body is a rejection without a note.
	var req struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	record, err := h.engine.Reject(organizationID, id, reviewerID, req.Note, time.Now().UTC())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(organizationID, websocket.NewMessage("record", "rejected", record.ID, nil))
	}

	writeJSON(w, http.StatusOK, record)
}

// writeEngineError maps completion engine failures onto HTTP statuses.
// Unrecognized errors are storage failures and surface as a generic 500.
func (h *RecordHandler) writeEngineError(w http.ResponseWriter, err error) {
	writeCompletionError(w, err, h.logger)
}

func writeCompletionError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var notEligible *completion.NotEligibleError
	var limitErr *plan.LimitError

	switch {
	case errors.Is(err, completion.ErrScheduleNotFound),
		errors.Is(err, completion.ErrItemNotFound),
		errors.Is(err, completion.ErrRecordNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, completion.ErrAccessCode):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, completion.ErrAlreadySubmitted),
		errors.Is(err, completion.ErrAlreadyApproved),
		errors.Is(err, completion.ErrAlreadyReviewed):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &notEligible):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":          notEligible.Error(),
			"required_days":  notEligible.RequiredDays,
			"next_available": notEligible.NextAvailable.UTC(),
		})
	case errors.As(err, &limitErr):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": limitErr.Error()})
	default:
		logger.Error("completion engine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
