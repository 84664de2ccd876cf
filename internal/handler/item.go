package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geldimmi/geldimmi/internal/auth"
	"github.com/geldimmi/geldimmi/internal/model"
	"github.com/geldimmi/geldimmi/internal/plan"
	"github.com/geldimmi/geldimmi/internal/store"
	"github.com/geldimmi/geldimmi/internal/websocket"
)

type ItemHandler struct {
	itemStore     *store.ItemStore
	scheduleStore *store.ScheduleStore
	orgStore      *store.OrganizationStore
	settingsStore *store.SettingsStore
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewItemHandler(is *store.ItemStore, ss *store.ScheduleStore, os *store.OrganizationStore, sets *store.SettingsStore, hub *websocket.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{itemStore: is, scheduleStore: ss, orgStore: os, settingsStore: sets, hub: hub, logger: logger}
}

type itemRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Frequency     string `json:"frequency"`
	FrequencyDays int    `json:"frequency_days"`
}

// validate normalizes the request against the caller's limit profile. A
// non-zero status means the request must be rejected with msg.
func (r *itemRequest) validate(profile plan.LimitProfile) (freq model.Frequency, status int, msg string) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return "", http.StatusBadRequest, "name is required"
	}

	if r.Frequency == "" {
		r.Frequency = string(model.FrequencyDaily)
	}
	freq, ok := model.ParseFrequency(r.Frequency)
	if !ok {
		return "", http.StatusBadRequest, "frequency must be one of daily, weekly, monthly, yearly, custom"
	}
	if freq != model.FrequencyDaily && !profile.CanSelectFrequency {
		return "", http.StatusForbidden, "frequency selection is not available on your plan"
	}
	if freq == model.FrequencyCustom && r.FrequencyDays < 1 {
		return "", http.StatusBadRequest, "frequency_days is required for custom frequency"
	}
	if freq != model.FrequencyCustom {
		r.FrequencyDays = 0
	}
	return freq, 0, ""
}

// ListBySchedule returns a schedule's active items.
func (h *ItemHandler) ListBySchedule(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrganizationID(r.Context())

	scheduleID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	schedule, err := h.scheduleStore.Get(organizationID, scheduleID)
	if err != nil {
		h.logger.Error("get schedule", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}
	if schedule == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "schedule not found"})
		return
	}

	items, err := h.itemStore.ListBySchedule(scheduleID)
	if err != nil {
		h.logger.Error("list items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrganizationID(r.Context())

	scheduleID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	schedule, err := h.scheduleStore.Get(organizationID, scheduleID)
	if err != nil {
		h.logger.Error("get schedule", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}
	if schedule == nil || !schedule.Active {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "schedule not found"})
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	org, err := h.orgStore.GetByID(organizationID)
	if err != nil {
		h.logger.Error("get organization", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}
	profile := plan.Resolve(org, h.settingsStore.LimitDefaults())

	freq, status, msg := req.validate(profile)
	if status != 0 {
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}

	count, err := h.itemStore.CountActive(scheduleID)
	if err != nil {
		h.logger.Error("count items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}
	if err := plan.CheckCeiling("item", count, profile.MaxItemsPerSchedule); err != nil {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	item, err := h.itemStore.Create(scheduleID, req.Name, req.Description, freq, req.FrequencyDays)
	if err != nil {
		h.logger.Error("create item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(organizationID, websocket.NewMessage("item", "created", item.ID, nil))
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrganizationID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.itemStore.GetForOrganization(organizationID, id)
	if err != nil {
		h.logger.Error("get item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	org, err := h.orgStore.GetByID(organizationID)
	if err != nil {
		h.logger.Error("get organization", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update item"})
		return
	}
	profile := plan.Resolve(org, h.settingsStore.LimitDefaults())

	freq, status, msg := req.validate(profile)
	if status != 0 {
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}

	item, err := h.itemStore.Update(id, req.Name, req.Description, freq, req.FrequencyDays)
	if err != nil {
		h.logger.Error("update item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update item"})
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(organizationID, websocket.NewMessage("item", "updated", id, nil))
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrganizationID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.itemStore.GetForOrganization(organizationID, id)
	if err != nil {
		h.logger.Error("get item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	if err := h.itemStore.Deactivate(id); err != nil {
		h.logger.Error("deactivate item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(organizationID, websocket.NewMessage("item", "deleted", id, nil))
	}

	w.WriteHeader(http.StatusNoContent)
}
