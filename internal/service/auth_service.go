package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"bitmore/internal/domain"
	"bitmore/internal/repository"
	"bitmore/pkg/email"
	"bitmore/pkg/googleauth"
	"bitmore/pkg/security"
)

const otpTTL = 10 * time.Minute

type AuthService struct {
	userRepo     repository.UserRepository
	emailService email.Service
	otpGenerator *security.OTPGenerator
	tokens       *security.TokenManager
	google       googleauth.Verifier
}

func NewAuthService(
	userRepo repository.UserRepository,
	emailService email.Service,
	otpGenerator *security.OTPGenerator,
	tokens *security.TokenManager,
	google googleauth.Verifier,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		emailService: emailService,
		otpGenerator: otpGenerator,
		tokens:       tokens,
		google:       google,
	}
}

func (s *AuthService) UsernameAvailable(username string) (bool, error) {
	exists, err := s.userRepo.UsernameExists(username)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return !exists, nil
}

// Register creates an unverified account and emails a verification code.
// A failed email send is logged, never surfaced; the user can ask for a
// resend.
func (s *AuthService) Register(username, emailAddr, password string) error {
	if taken, err := s.userRepo.UsernameExists(username); err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		return domain.ErrUsernameTaken
	}

	if taken, err := s.userRepo.EmailExists(emailAddr); err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return domain.ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        emailAddr,
		PasswordHash: passwordHash,
		IsVerified:   false,
	}
	if err := user.Validate(); err != nil {
		return err
	}

	user, err = s.userRepo.Create(user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.issueOTP(user, domain.OTPPurposeVerify)
	return nil
}

// VerifyOTP consumes a verify-purpose code: flips the verification flag,
// clears the OTP fields and logs the user in.
func (s *AuthService) VerifyOTP(username, code string) (*domain.User, security.TokenPair, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, security.TokenPair{}, err
	}

	if !user.OTPValid(code, domain.OTPPurposeVerify, time.Now()) {
		return nil, security.TokenPair{}, domain.ErrInvalidOTP
	}

	if err := s.userRepo.MarkVerified(user.ID); err != nil {
		return nil, security.TokenPair{}, fmt.Errorf("failed to mark user verified: %w", err)
	}
	if err := s.userRepo.ClearOTP(user.ID); err != nil {
		return nil, security.TokenPair{}, fmt.Errorf("failed to clear OTP: %w", err)
	}
	user.IsVerified = true
	user.OTP = nil
	user.OTPPurpose = nil
	user.OTPExpiresAt = nil

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, security.TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	log.Printf("User %s verified successfully", username)
	return user, pair, nil
}

// Login authenticates email + password. Google-linked accounts never pass a
// credential login, regardless of the password supplied.
func (s *AuthService) Login(emailAddr, password string) (security.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(emailAddr)
	if err != nil {
		return security.TokenPair{}, err
	}

	if user.IsGoogleAccount {
		return security.TokenPair{}, domain.ErrGoogleAccount
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return security.TokenPair{}, domain.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return security.TokenPair{}, domain.ErrNotVerified
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return security.TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	log.Printf("User %s logged in successfully", user.Username)
	return pair, nil
}

// GoogleLogin verifies a Google ID token and signs the holder in, creating a
// verified account on first sight. The returned bool reports whether the
// account was just created.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*domain.User, bool, security.TokenPair, error) {
	claims, err := s.google.Verify(ctx, idToken)
	if err != nil {
		log.Printf("Google token verification failed: %v", err)
		return nil, false, security.TokenPair{}, domain.ErrInvalidGoogleToken
	}

	created := false
	user, err := s.userRepo.GetByEmail(claims.Email)
	switch {
	case err == nil:
		if !user.IsVerified {
			if err := s.userRepo.MarkVerified(user.ID); err != nil {
				return nil, false, security.TokenPair{}, fmt.Errorf("failed to mark user verified: %w", err)
			}
			user.IsVerified = true
		}
	case errors.Is(err, domain.ErrUserNotFound):
		username, err := s.uniqueUsername(claims.Email)
		if err != nil {
			return nil, false, security.TokenPair{}, err
		}

		user, err = s.userRepo.Create(&domain.User{
			Username:        username,
			Email:           claims.Email,
			IsVerified:      true,
			IsGoogleAccount: true,
		})
		if err != nil {
			return nil, false, security.TokenPair{}, fmt.Errorf("failed to create user: %w", err)
		}
		created = true
		log.Printf("Created Google account for %s as %s", claims.Email, username)
	default:
		return nil, false, security.TokenPair{}, err
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, false, security.TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return user, created, pair, nil
}

// uniqueUsername derives a username from the email local part, appending an
// incrementing numeric suffix until it no longer collides.
func (s *AuthService) uniqueUsername(emailAddr string) (string, error) {
	base := strings.SplitN(emailAddr, "@", 2)[0]
	candidate := base

	for i := 1; ; i++ {
		exists, err := s.userRepo.UsernameExists(candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

// ForgotPassword issues a reset code for a known email. An unknown email is
// not an error so the endpoint can answer with the same generic message
// either way. A Google-linked account is the one deliberate exception.
func (s *AuthService) ForgotPassword(emailAddr string) error {
	user, err := s.userRepo.GetByEmail(emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}

	if user.IsGoogleAccount {
		return domain.ErrGoogleAccount
	}

	s.issueOTP(user, domain.OTPPurposeReset)
	return nil
}

// ResetPassword consumes a reset-purpose code and stores the new password.
func (s *AuthService) ResetPassword(emailAddr, code, newPassword string) error {
	user, err := s.userRepo.GetByEmail(emailAddr)
	if err != nil {
		return err
	}

	if !user.OTPValid(code, domain.OTPPurposeReset, time.Now()) {
		return domain.ErrInvalidOTP
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(user.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.userRepo.ClearOTP(user.ID); err != nil {
		return fmt.Errorf("failed to clear OTP: %w", err)
	}

	log.Printf("Password reset for user %s", user.Username)
	return nil
}

// ResendOTP reissues a fresh code for either purpose given just a username.
func (s *AuthService) ResendOTP(username, purpose string) error {
	if !domain.ValidOTPPurpose(purpose) {
		return domain.ErrInvalidOTPPurpose
	}

	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return err
	}

	s.issueOTP(user, purpose)
	return nil
}

// Refresh exchanges a valid refresh token for a fresh token pair. The account
// must still exist; a token outliving its user is useless.
func (s *AuthService) Refresh(refreshToken string) (security.TokenPair, error) {
	userID, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return security.TokenPair{}, err
	}

	if _, err := s.userRepo.GetByID(userID); err != nil {
		return security.TokenPair{}, err
	}

	pair, err := s.tokens.IssuePair(userID)
	if err != nil {
		return security.TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return pair, nil
}

func (s *AuthService) GetUserByID(userID int) (*domain.User, error) {
	return s.userRepo.GetByID(userID)
}

// issueOTP generates, persists and emails a code. Email delivery is
// best-effort: a failure is logged and the stored code stays usable via
// resend.
func (s *AuthService) issueOTP(user *domain.User, purpose string) {
	code, err := s.otpGenerator.Generate()
	if err != nil {
		log.Printf("Error generating OTP for %s: %v", user.Username, err)
		return
	}

	expiresAt := time.Now().Add(otpTTL)
	if err := s.userRepo.SetOTP(user.ID, code, purpose, expiresAt); err != nil {
		log.Printf("Error storing OTP for %s: %v", user.Username, err)
		return
	}

	if s.emailService == nil {
		log.Printf("Email service not configured, skipping OTP delivery to %s", user.Email)
		return
	}

	subject := fmt.Sprintf("Your Bitmore %s OTP", capitalize(purpose))
	body := fmt.Sprintf("Your OTP is %s. It expires in 10 minutes.", code)
	if err := s.emailService.Send(user.Email, subject, body); err != nil {
		log.Printf("Error sending OTP email to %s: %v", user.Email, err)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
