package http

import (
	"net/http"

	"quiz-grading-service/internal/app"
	"quiz-grading-service/internal/domain"
)

type NotificationHandler struct {
	settings *app.SettingsService
}

func NewNotificationHandler(settings *app.SettingsService) *NotificationHandler {
	return &NotificationHandler{settings: settings}
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	setting, err := h.settings.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSettingView(setting))
}

// Update serves both PUT and POST as a partial update.
func (h *NotificationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	setting, err := h.settings.Update(r.Context(), domain.SettingPatch{
		BotToken:    req.BotToken,
		AdminChatID: req.AdminChatID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSettingView(setting))
}
