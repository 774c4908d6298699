package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"fare-backend/internal/auth"
	"fare-backend/internal/cache"
	"fare-backend/internal/models"
	"fare-backend/internal/repositories"
	"fare-backend/internal/timeutil"
)

type UserService struct {
	userRepo     *repositories.UserRepository
	loginLogRepo *repositories.LoginLogRepository
	jwtManager   *auth.JWTManager
}

func NewUserService(userRepo *repositories.UserRepository, loginLogRepo *repositories.LoginLogRepository, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		userRepo:     userRepo,
		loginLogRepo: loginLogRepo,
		jwtManager:   jwtManager,
	}
}

// Login authenticates by email and password. When the account has 2FA enabled
// it returns a LoginStepResponse carrying a short-lived temp token instead of
// a session token; the client finishes with VerifyTOTP.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest, ipAddress, userAgent string) (*models.AuthResponse, *models.LoginStepResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid email or password")
	}
	if !user.IsActive {
		return nil, nil, fmt.Errorf("account is deactivated")
	}

	// bcrypt is deliberately slow; a redis-side hit skips it for repeated
	// logins with the same credentials.
	if userID, ok := cache.GetCachedAuth(ctx, req.Email, req.Password); !ok || userID != user.ID {
		if !auth.VerifyPassword(user.PasswordHash, req.Password) {
			return nil, nil, fmt.Errorf("invalid email or password")
		}
		cache.CacheAuth(ctx, req.Email, req.Password, user.ID)
	}

	if user.TOTPEnabled {
		tempToken, err := s.jwtManager.GenerateTempToken(user)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate temp token: %w", err)
		}
		return nil, &models.LoginStepResponse{Requires2FA: true, TempToken: tempToken}, nil
	}

	return s.finishLogin(ctx, user, ipAddress, userAgent)
}

func (s *UserService) finishLogin(ctx context.Context, user *models.User, ipAddress, userAgent string) (*models.AuthResponse, *models.LoginStepResponse, error) {
	token, err := s.jwtManager.GenerateToken(user)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logEntry := &models.LoginLog{
		UserID:    user.ID,
		LoginTime: timeutil.Now(),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := s.loginLogRepo.Create(ctx, logEntry); err != nil {
		// A failed audit row must not block the login itself.
		log.Printf("[UserService] Failed to record login for user %d: %v", user.ID, err)
	}

	return &models.AuthResponse{Token: token, User: user}, nil, nil
}

// CompleteLogin issues the session token after a successful 2FA verification.
func (s *UserService) CompleteLogin(ctx context.Context, userID int, ipAddress, userAgent string) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp, _, err := s.finishLogin(ctx, user, ipAddress, userAgent)
	return resp, err
}

func (s *UserService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Name == "" || req.Email == "" {
		return nil, fmt.Errorf("name and email are required")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if req.Role != "admin" && req.Role != "operator" {
		return nil, fmt.Errorf("role must be admin or operator")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) Update(ctx context.Context, id int, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != "" && req.Role != user.Role {
		if user.Role == "admin" && req.Role != "admin" {
			if err := s.guardLastAdmin(ctx); err != nil {
				return nil, err
			}
		}
		if req.Role != "admin" && req.Role != "operator" {
			return nil, fmt.Errorf("role must be admin or operator")
		}
		user.Role = req.Role
	}
	if req.Name != "" {
		user.Name = strings.TrimSpace(req.Name)
	}
	if req.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			return nil, fmt.Errorf("password must be at least 8 characters")
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user account. The last active admin cannot be deleted: a
// system with no admin would be unrecoverable from the API.
func (s *UserService) Delete(ctx context.Context, id int) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == "admin" && user.IsActive {
		if err := s.guardLastAdmin(ctx); err != nil {
			return err
		}
	}
	return s.userRepo.Delete(ctx, id)
}

func (s *UserService) guardLastAdmin(ctx context.Context) error {
	count, err := s.userRepo.CountActiveAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count <= 1 {
		return fmt.Errorf("cannot remove the last active admin")
	}
	return nil
}
