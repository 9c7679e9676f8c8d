package domain

import "errors"

var (
	ErrInvalidUsername   = errors.New("invalid username")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrEmailTaken        = errors.New("email already registered")
	ErrGoogleAccount     = errors.New("account registered via Google")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrNotVerified       = errors.New("account not verified")

	ErrInvalidOTP        = errors.New("invalid or expired OTP")
	ErrInvalidOTPPurpose = errors.New("invalid OTP purpose")

	ErrInvalidGoogleToken = errors.New("invalid Google token")

	ErrInvalidArticleTitle    = errors.New("invalid article title")
	ErrInvalidArticleCategory = errors.New("invalid article category")
)
