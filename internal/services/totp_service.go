package services

import (
	"context"
	"fmt"

	"fare-backend/internal/auth"
	"fare-backend/internal/models"
	"fare-backend/internal/repositories"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "FareBackend"

type TOTPService struct {
	userRepo *repositories.UserRepository
}

func NewTOTPService(userRepo *repositories.UserRepository) *TOTPService {
	return &TOTPService{userRepo: userRepo}
}

// GenerateSetup creates a new TOTP secret for the user and stores it pending.
// 2FA is not active until the user proves possession with VerifyAndEnable.
func (s *TOTPService) GenerateSetup(ctx context.Context, user *models.User) (*models.TOTPSetupResponse, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	if err := s.userRepo.SetTOTPSecret(ctx, user.ID, key.Secret()); err != nil {
		return nil, fmt.Errorf("failed to store TOTP secret: %w", err)
	}

	return &models.TOTPSetupResponse{
		Secret:      key.Secret(),
		OTPAuthURL:  key.URL(),
		Issuer:      totpIssuer,
		AccountName: user.Email,
	}, nil
}

// VerifyAndEnable checks the code against the pending secret and turns 2FA on.
func (s *TOTPService) VerifyAndEnable(ctx context.Context, userID int, code string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == "" {
		return fmt.Errorf("no pending 2FA setup; call setup first")
	}
	if !totp.Validate(code, user.TOTPSecret) {
		return fmt.Errorf("invalid verification code")
	}
	return s.userRepo.EnableTOTP(ctx, userID)
}

// Verify checks a login-time TOTP code for a user with 2FA enabled.
func (s *TOTPService) Verify(ctx context.Context, userID int, code string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TOTPEnabled || user.TOTPSecret == "" {
		return fmt.Errorf("2FA is not enabled for this account")
	}
	if !totp.Validate(code, user.TOTPSecret) {
		return fmt.Errorf("invalid verification code")
	}
	return nil
}

// Disable turns 2FA off. It requires both the account password and a current
// code so a hijacked session alone cannot weaken the account.
func (s *TOTPService) Disable(ctx context.Context, userID int, password, code string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TOTPEnabled {
		return fmt.Errorf("2FA is not enabled for this account")
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return fmt.Errorf("invalid password")
	}
	if !totp.Validate(code, user.TOTPSecret) {
		return fmt.Errorf("invalid verification code")
	}
	return s.userRepo.DisableTOTP(ctx, userID)
}
