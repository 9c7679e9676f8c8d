package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"bitmore/internal/domain"
	"bitmore/internal/middleware"
	"bitmore/internal/service"
	"bitmore/pkg/security"
)

const minPasswordLength = 8

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// UsernameAvailability handles GET /api/users/username-availability/?username=X
func (h *AuthHandler) UsernameAvailability(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		details := fieldErrors{}
		details.add("username", "This field is required.")
		respondValidationError(w, details)
		return
	}

	available, err := h.authService.UsernameAvailable(username)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"available": available})
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Register handles POST /api/users/register/
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}

	details := fieldErrors{}
	if req.Username == "" {
		details.add("username", "This field is required.")
	}
	if req.Email == "" {
		details.add("email", "This field is required.")
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		details.add("email", "Enter a valid email address.")
	}
	if req.Password == "" {
		details.add("password", "This field is required.")
	} else if len(req.Password) < minPasswordLength {
		details.add("password", "Password must be at least 8 characters.")
	}
	if req.ConfirmPassword != req.Password {
		details.add("confirm_password", "Passwords do not match.")
	}
	if len(details) > 0 {
		respondValidationError(w, details)
		return
	}

	err := h.authService.Register(req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		details.add("username", "A user with that username already exists.")
		respondValidationError(w, details)
	case errors.Is(err, domain.ErrEmailTaken):
		details.add("email", "A user with that email already exists.")
		respondValidationError(w, details)
	case err != nil:
		respondDetail(w, http.StatusInternalServerError, "Internal server error.")
	default:
		respondMessage(w, http.StatusCreated, "Registered. OTP sent to email.")
	}
}

type verifyOTPRequest struct {
	Username string `json:"username"`
	OTP      string `json:"otp"`
}

// VerifyOTP handles POST /api/users/verify-otp/
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}

	details := fieldErrors{}
	if req.Username == "" {
		details.add("username", "This field is required.")
	}
	if req.OTP == "" {
		details.add("otp", "This field is required.")
	}
	if len(details) > 0 {
		respondValidationError(w, details)
		return
	}

	_, pair, err := h.authService.VerifyOTP(req.Username, req.OTP)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		respondDetail(w, http.StatusNotFound, "User not found.")
	case errors.Is(err, domain.ErrInvalidOTP):
		respondDetail(w, http.StatusBadRequest, "Invalid or expired OTP.")
	case err != nil:
		respondDetail(w, http.StatusInternalServerError, "Internal server error.")
	default:
		respondTokens(w, "Verified successfully.", pair, nil)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/users/login/
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}

	details := fieldErrors{}
	if req.Email == "" {
		details.add("email", "This field is required.")
	}
	if req.Password == "" {
		details.add("password", "This field is required.")
	}
	if len(details) > 0 {
		respondValidationError(w, details)
		return
	}

	pair, err := h.authService.Login(req.Email, req.Password)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		respondDetail(w, http.StatusBadRequest, "No account found with this email.")
	case errors.Is(err, domain.ErrGoogleAccount):
		respondDetail(w, http.StatusBadRequest, "This account was registered via Google. Please login with Google.")
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondDetail(w, http.StatusBadRequest, "Incorrect email or password.")
	case errors.Is(err, domain.ErrNotVerified):
		respondDetail(w, http.StatusBadRequest, "Please verify your email first.")
	case err != nil:
		respondDetail(w, http.StatusInternalServerError, "Internal server error.")
	default:
		respondTokens(w, "Login successful.", pair, nil)
	}
}

type googleLoginRequest struct {
	IDToken string `json:"id_token"`
}

// GoogleLogin handles POST /api/users/google/
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}

	if req.IDToken == "" {
		details := fieldErrors{}
		details.add("id_token", "This field is required.")
		respondValidationError(w, details)
		return
	}

	user, created, pair, err := h.authService.GoogleLogin(r.Context(), req.IDToken)
	switch {
	case errors.Is(err, domain.ErrInvalidGoogleToken):
		respondDetail(w, http.StatusBadRequest, "Invalid Google token.")
	case err != nil:
		respondDetail(w, http.StatusInternalServerError, "Internal server error.")
	default:
		respondTokens(w, "Google login successful.", pair, map[string]any{
			"email":  user.Email,
			"is_new": created,
		})
	}
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword handles POST /api/users/forgot-password/
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}

	details := fieldErrors{}
	if req.Email == "" {
		details.add("email", "This field is required.")
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		details.add("email", "Enter a valid email address.")
	}
	if len(details) > 0 {
		respondValidationError(w, details)
		return
	}

	err := h.authService.ForgotPassword(req.Email)
	switch {
	case errors.Is(err, domain.ErrGoogleAccount):
		respondDetail(w, http.StatusBadRequest, "This account was registered via Google. Please login with Google.")
	case err != nil:
		respondDetail(w, http.StatusInternalServerError, "Internal server error.")
	default:
		// Same acknowledgment whether or not the email exists.
		respondMessage(w, http.StatusOK, "If the email exists, an OTP has been sent.")
	}
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

// ResetPassword handles POST /api/users/reset-password/
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}

	details := fieldErrors{}
	if req.Email == "" {
		details.add("email", "This field is required.")
	}
	if req.OTP == "" {
		details.add("otp", "This field is required.")
	}
	if req.NewPassword == "" {
		details.add("new_password", "This field is required.")
	} else if len(req.NewPassword) < minPasswordLength {
		details.add("new_password", "Password must be at least 8 characters.")
	}
	if len(details) > 0 {
		respondValidationError(w, details)
		return
	}

	err := h.authService.ResetPassword(req.Email, req.OTP, req.NewPassword)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		respondDetail(w, http.StatusBadRequest, "Invalid email or OTP.")
	case errors.Is(err, domain.ErrInvalidOTP):
		respondDetail(w, http.StatusBadRequest, "Invalid or expired OTP.")
	case err != nil:
		respondDetail(w, http.StatusInternalServerError, "Internal server error.")
	default:
		respondMessage(w, http.StatusOK, "Password reset successful.")
	}
}

type resendOTPRequest struct {
	Username string `json:"username"`
	Purpose  string `json:"purpose"`
}

// ResendOTP handles POST /api/users/resend-otp/
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req resendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}

	if req.Username == "" {
		respondDetail(w, http.StatusBadRequest, "Username is required.")
		return
	}
	if req.Purpose == "" {
		req.Purpose = domain.OTPPurposeVerify
	}

	err := h.authService.ResendOTP(req.Username, req.Purpose)
	switch {
	case errors.Is(err, domain.ErrInvalidOTPPurpose):
		respondDetail(w, http.StatusBadRequest, "Purpose must be 'verify' or 'reset'.")
	case errors.Is(err, domain.ErrUserNotFound):
		respondDetail(w, http.StatusNotFound, "User not found.")
	case err != nil:
		respondDetail(w, http.StatusInternalServerError, "Internal server error.")
	default:
		respondMessage(w, http.StatusOK, "OTP resent successfully.")
	}
}

type refreshTokenRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshToken handles POST /api/users/token-refresh/
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}

	if req.Refresh == "" {
		details := fieldErrors{}
		details.add("refresh", "This field is required.")
		respondValidationError(w, details)
		return
	}

	pair, err := h.authService.Refresh(req.Refresh)
	switch {
	case errors.Is(err, security.ErrTokenExpired),
		errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, domain.ErrUserNotFound):
		respondDetail(w, http.StatusUnauthorized, "Invalid or expired token.")
	case err != nil:
		respondDetail(w, http.StatusInternalServerError, "Internal server error.")
	default:
		respondTokens(w, "Token refreshed successfully.", pair, nil)
	}
}

// Me handles GET /api/users/me/ behind the bearer-token middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondDetail(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			respondDetail(w, http.StatusNotFound, "User not found.")
			return
		}
		respondDetail(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func respondTokens(w http.ResponseWriter, message string, pair security.TokenPair, extra map[string]any) {
	payload := map[string]any{
		"message": message,
		"access":  pair.Access,
		"refresh": pair.Refresh,
	}
	for key, value := range extra {
		payload[key] = value
	}
	respondJSON(w, http.StatusOK, payload)
}
