package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"fare-backend/internal/auth"
	"fare-backend/internal/middleware"
	"fare-backend/internal/models"
	"fare-backend/internal/services"
	"fare-backend/pkg/utils"
)

type AuthHandler struct {
	Users      *services.UserService
	TOTP       *services.TOTPService
	JWTManager *auth.JWTManager
}

func NewAuthHandler(users *services.UserService, totpSvc *services.TOTPService, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{Users: users, TOTP: totpSvc, JWTManager: jwtManager}
}

// Login authenticates with email and password. Accounts with 2FA enabled get
// a temp token and finish via VerifyTOTP.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	authResp, stepResp, err := h.Users.Login(r.Context(), &req, clientAddr(r), r.UserAgent())
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, err.Error())
		return
	}
	if stepResp != nil {
		utils.JSON(w, http.StatusOK, stepResp)
		return
	}
	utils.JSON(w, http.StatusOK, authResp)
}

// VerifyTOTP completes a 2FA login: temp token from step one plus a current
// authenticator code.
func (h *AuthHandler) VerifyTOTP(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	claims, err := h.JWTManager.ValidateTempToken(req.TempToken)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "Invalid or expired temp token")
		return
	}
	if err := h.TOTP.Verify(r.Context(), claims.UserID, req.Code); err != nil {
		utils.Error(w, http.StatusUnauthorized, err.Error())
		return
	}

	authResp, err := h.Users.CompleteLogin(r.Context(), claims.UserID, clientAddr(r), r.UserAgent())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, authResp)
}

// Logout acknowledges a sign-out. Tokens are stateless JWTs, so there is no
// server-side session to tear down; the client discards its token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if email, ok := middleware.GetEmailFromContext(r.Context()); ok {
		log.Printf("[Auth] User logged out: %s", email)
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	user, err := h.Users.Get(r.Context(), userID)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "User not found")
		return
	}
	utils.JSON(w, http.StatusOK, user)
}

func clientAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	return r.RemoteAddr
}
