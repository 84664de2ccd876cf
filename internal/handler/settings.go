package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/geldimmi/geldimmi/internal/store"
)

// SettingsHandler exposes the tier-default limit profiles to organization
// admins. Values written here change what every tenant on a default profile
// is allowed to do, so the routes sit behind the admin middleware.
type SettingsHandler struct {
	settingsStore *store.SettingsStore
	logger        *slog.Logger
}

func NewSettingsHandler(ss *store.SettingsStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, logger: logger}
}

func (h *SettingsHandler) GetLimitDefaults(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsStore.GetLimitSettings()
	if err != nil {
		h.logger.Error("get limit settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateLimitDefaults(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no settings provided"})
		return
	}

	for key := range req {
		if !store.IsLimitKey(key) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown setting: " + key})
			return
		}
	}
	for key, value := range req {
		if err := h.settingsStore.Set(key, value); err != nil {
			h.logger.Error("set setting", "key", key, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update settings"})
			return
		}
	}

	settings, err := h.settingsStore.GetLimitSettings()
	if err != nil {
		h.logger.Error("get limit settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
