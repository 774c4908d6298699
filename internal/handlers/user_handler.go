package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"fare-backend/internal/middleware"
	"fare-backend/internal/models"
	"fare-backend/internal/repositories"
	"fare-backend/internal/services"
	"fare-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	Service   *services.UserService
	AuditRepo *repositories.AdminActionLogRepository
}

func NewUserHandler(s *services.UserService, auditRepo *repositories.AdminActionLogRepository) *UserHandler {
	return &UserHandler{Service: s, AuditRepo: auditRepo}
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	adminID, _ := middleware.GetUserIDFromContext(r.Context())
	h.audit(r, adminID, models.ActionUserCreated, user.ID, fmt.Sprintf("Created %s account for %s", user.Role, user.Email))

	utils.JSON(w, http.StatusCreated, user)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.Service.Update(r.Context(), id, &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	adminID, _ := middleware.GetUserIDFromContext(r.Context())
	if id == adminID {
		utils.Error(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.audit(r, adminID, models.ActionUserDeleted, id, fmt.Sprintf("Deleted user %d", id))
	utils.JSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (h *UserHandler) audit(r *http.Request, adminID int, action string, targetID int, description string) {
	entry := &models.AdminActionLog{
		AdminUserID: adminID,
		ActionType:  action,
		TargetType:  "user",
		TargetID:    &targetID,
		Description: description,
	}
	if err := h.AuditRepo.Create(r.Context(), entry); err != nil {
		log.Printf("[UserHandler] Failed to write audit log: %v", err)
	}
}
