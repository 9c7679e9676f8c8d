package domain

import "time"

const (
	OTPPurposeVerify = "verify"
	OTPPurposeReset  = "reset"
)

type User struct {
	ID              int        `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	IsVerified      bool       `json:"is_verified"`
	IsGoogleAccount bool       `json:"is_google_account"`
	OTP             *string    `json:"-"`
	OTPPurpose      *string    `json:"-"`
	OTPExpiresAt    *time.Time `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (u *User) Validate() error {
	if u.Username == "" {
		return ErrInvalidUsername
	}
	if u.Email == "" {
		return ErrInvalidEmail
	}
	return nil
}

// OTPValid reports whether the supplied code may be consumed for the given
// purpose. All three stored fields must be present, the code and purpose must
// match exactly and the expiry must not have passed. Callers clear the fields
// after a successful check; a code is never usable twice.
func (u *User) OTPValid(code, purpose string, now time.Time) bool {
	if u.OTP == nil || u.OTPPurpose == nil || u.OTPExpiresAt == nil {
		return false
	}
	if *u.OTP != code {
		return false
	}
	if *u.OTPPurpose != purpose {
		return false
	}
	if now.After(*u.OTPExpiresAt) {
		return false
	}
	return true
}

func ValidOTPPurpose(purpose string) bool {
	return purpose == OTPPurposeVerify || purpose == OTPPurposeReset
}
