package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/geldimmi/geldimmi/internal/auth"
	"github.com/geldimmi/geldimmi/internal/model"
	"github.com/geldimmi/geldimmi/internal/plan"
	"github.com/geldimmi/geldimmi/internal/store"
	"github.com/geldimmi/geldimmi/internal/websocket"
)

type ScheduleHandler struct {
	scheduleStore *store.ScheduleStore
	orgStore      *store.OrganizationStore
	settingsStore *store.SettingsStore
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewScheduleHandler(ss *store.ScheduleStore, os *store.OrganizationStore, sets *store.SettingsStore, hub *websocket.Hub, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{scheduleStore: ss, orgStore: os, settingsStore: sets, hub: hub, logger: logger}
}

func (h *ScheduleHandler) broadcast(organizationID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(organizationID, msg)
	}
}

type scheduleRequest struct {
	Name       string `json:"name"`
	GroupID    *int64 `json:"group_id"`
	AccessCode string `json:"access_code"`
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrganizationID(r.Context())

	schedules, err := h.scheduleStore.ListByOrganization(organizationID)
	if err != nil {
		h.logger.Error("list schedules", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list schedules"})
		return
	}
	if schedules == nil {
		schedules = []model.Schedule{}
	}
	writeJSON(w, http.StatusOK, schedules)
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrganizationID(r.Context())

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	profile, err := h.resolveLimits(organizationID)
	if err != nil {
		h.logger.Error("resolve limits", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create schedule"})
		return
	}

	count, err := h.scheduleStore.CountActive(organizationID)
	if err != nil {
		h.logger.Error("count schedules", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create schedule"})
		return
	}
	if err := plan.CheckCeiling("schedule", count, profile.MaxSchedules); err != nil {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}

	if req.GroupID != nil {
		group, err := h.scheduleStore.GetGroup(organizationID, *req.GroupID)
		if err != nil {
			h.logger.Error("get group", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create schedule"})
			return
		}
		if group == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "group not found"})
			return
		}
	}

	schedule, err := h.scheduleStore.Create(organizationID, req.Name, req.GroupID, req.AccessCode)
	if err != nil {
		h.logger.Error("create schedule", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create schedule"})
		return
	}

	h.broadcast(organizationID, websocket.NewMessage("schedule", "created", schedule.ID, nil))

	writeJSON(w, http.StatusCreated, schedule)
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrganizationID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	schedule, err := h.scheduleStore.Get(organizationID, id)
	if err != nil {
		h.logger.Error("get schedule", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get schedule"})
		return
	}
	if schedule == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "schedule not found"})
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrganizationID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.scheduleStore.Get(organizationID, id)
	if err != nil {
		h.logger.Error("get schedule", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get schedule"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "schedule not found"})
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	if req.GroupID != nil {
		group, err := h.scheduleStore.GetGroup(organizationID, *req.GroupID)
		if err != nil {
			h.logger.Error("get group", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update schedule"})
			return
		}
		if group == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "group not found"})
			return
		}
	}

	schedule, err := h.scheduleStore.Update(organizationID, id, req.Name, req.GroupID, req.AccessCode)
	if err != nil {
		h.logger.Error("update schedule", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update schedule"})
		return
	}

	h.broadcast(organizationID, websocket.NewMessage("schedule", "updated", id, nil))

	writeJSON(w, http.StatusOK, schedule)
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrganizationID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.scheduleStore.Get(organizationID, id)
	if err != nil {
		h.logger.Error("get schedule", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get schedule"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "schedule not found"})
		return
	}

	if err := h.scheduleStore.Deactivate(organizationID, id); err != nil {
		h.logger.Error("deactivate schedule", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete schedule"})
		return
	}

	h.broadcast(organizationID, websocket.NewMessage("schedule", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}

func (h *ScheduleHandler) resolveLimits(organizationID int64) (plan.LimitProfile, error) {
	org, err := h.orgStore.GetByID(organizationID)
	if err != nil {
		return plan.LimitProfile{}, err
	}
	return plan.Resolve(org, h.settingsStore.LimitDefaults()), nil
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
