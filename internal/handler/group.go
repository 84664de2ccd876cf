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

type GroupHandler struct {
	scheduleStore *store.ScheduleStore
	orgStore      *store.OrganizationStore
	settingsStore *store.SettingsStore
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewGroupHandler(ss *store.ScheduleStore, os *store.OrganizationStore, sets *store.SettingsStore, hub *websocket.Hub, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{scheduleStore: ss, orgStore: os, settingsStore: sets, hub: hub, logger: logger}
}

type groupRequest struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrganizationID(r.Context())

	groups, err := h.scheduleStore.ListGroups(organizationID)
	if err != nil {
		h.logger.Error("list groups", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list groups"})
		return
	}
	if groups == nil {
		groups = []model.ScheduleGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrganizationID(r.Context())

	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	org, err := h.orgStore.GetByID(organizationID)
	if err != nil {
		h.logger.Error("get organization", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create group"})
		return
	}
	profile := plan.Resolve(org, h.settingsStore.LimitDefaults())
	if !profile.CanGroupSchedules {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "schedule grouping is not available on your plan"})
		return
	}

	group, err := h.scheduleStore.CreateGroup(organizationID, req.Name, req.SortOrder)
	if err != nil {
		h.logger.Error("create group", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create group"})
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(organizationID, websocket.NewMessage("group", "created", group.ID, nil))
	}

	writeJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrganizationID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.scheduleStore.GetGroup(organizationID, id)
	if err != nil {
		h.logger.Error("get group", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get group"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "group not found"})
		return
	}

	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	group, err := h.scheduleStore.UpdateGroup(organizationID, id, req.Name, req.SortOrder)
	if err != nil {
		h.logger.Error("update group", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update group"})
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(organizationID, websocket.NewMessage("group", "updated", id, nil))
	}

	writeJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	organizationID := auth.OrganizationID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.scheduleStore.GetGroup(organizationID, id)
	if err != nil {
		h.logger.Error("get group", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get group"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "group not found"})
		return
	}

	if err := h.scheduleStore.DeleteGroup(organizationID, id); err != nil {
		h.logger.Error("delete group", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete group"})
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(organizationID, websocket.NewMessage("group", "deleted", id, nil))
	}

	w.WriteHeader(http.StatusNoContent)
}
