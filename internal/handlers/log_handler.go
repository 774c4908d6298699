package handlers

import (
	"net/http"
	"strconv"

	"fare-backend/internal/repositories"
	"fare-backend/pkg/utils"
)

// LogHandler serves the audit surfaces: login history and admin actions.
type LogHandler struct {
	LoginLogs *repositories.LoginLogRepository
	Actions   *repositories.AdminActionLogRepository
}

func NewLogHandler(loginLogs *repositories.LoginLogRepository, actions *repositories.AdminActionLogRepository) *LogHandler {
	return &LogHandler{LoginLogs: loginLogs, Actions: actions}
}

func (h *LogHandler) ListLoginLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	logs, err := h.LoginLogs.List(r.Context(), limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, logs)
}

func (h *LogHandler) ListAdminActions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	logs, err := h.Actions.List(r.Context(), limit, r.URL.Query().Get("action_type"))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, logs)
}
