package repository

import (
	"database/sql"
	"fmt"
	"time"

	"bitmore/internal/domain"
)

type UserRepository interface {
	Create(user *domain.User) (*domain.User, error)
	GetByEmail(email string) (*domain.User, error)
	GetByUsername(username string) (*domain.User, error)
	GetByID(id int) (*domain.User, error)
	UsernameExists(username string) (bool, error)
	EmailExists(email string) (bool, error)
	SetOTP(userID int, code, purpose string, expiresAt time.Time) error
	ClearOTP(userID int) error
	MarkVerified(userID int) error
	UpdatePassword(userID int, passwordHash string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, email, password_hash, is_verified, is_google_account,
	otp, otp_purpose, otp_expires_at, created_at`

func (r *userRepository) Create(user *domain.User) (*domain.User, error) {
	err := r.db.QueryRow(
		`INSERT INTO users (username, email, password_hash, is_verified, is_google_account)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		user.Username, user.Email, user.PasswordHash, user.IsVerified, user.IsGoogleAccount,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (r *userRepository) GetByEmail(email string) (*domain.User, error) {
	return r.getOne("SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

func (r *userRepository) GetByUsername(username string) (*domain.User, error) {
	return r.getOne("SELECT "+userColumns+" FROM users WHERE username = $1", username)
}

func (r *userRepository) GetByID(id int) (*domain.User, error) {
	return r.getOne("SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (r *userRepository) getOne(query string, arg any) (*domain.User, error) {
	user := &domain.User{}
	var otp, otpPurpose sql.NullString
	var otpExpiresAt sql.NullTime

	err := r.db.QueryRow(query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.IsVerified, &user.IsGoogleAccount,
		&otp, &otpPurpose, &otpExpiresAt, &user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if otp.Valid {
		user.OTP = &otp.String
	}
	if otpPurpose.Valid {
		user.OTPPurpose = &otpPurpose.String
	}
	if otpExpiresAt.Valid {
		user.OTPExpiresAt = &otpExpiresAt.Time
	}

	return user, nil
}

func (r *userRepository) UsernameExists(username string) (bool, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM users WHERE LOWER(username) = LOWER($1)",
		username,
	).Scan(&count)

	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return count > 0, nil
}

func (r *userRepository) EmailExists(email string) (bool, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM users WHERE email = $1",
		email,
	).Scan(&count)

	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return count > 0, nil
}

func (r *userRepository) SetOTP(userID int, code, purpose string, expiresAt time.Time) error {
	_, err := r.db.Exec(
		"UPDATE users SET otp = $1, otp_purpose = $2, otp_expires_at = $3 WHERE id = $4",
		code, purpose, expiresAt, userID,
	)

	if err != nil {
		return fmt.Errorf("failed to set OTP: %w", err)
	}

	return nil
}

func (r *userRepository) ClearOTP(userID int) error {
	_, err := r.db.Exec(
		"UPDATE users SET otp = NULL, otp_purpose = NULL, otp_expires_at = NULL WHERE id = $1",
		userID,
	)

	if err != nil {
		return fmt.Errorf("failed to clear OTP: %w", err)
	}

	return nil
}

func (r *userRepository) MarkVerified(userID int) error {
	_, err := r.db.Exec(
		"UPDATE users SET is_verified = TRUE WHERE id = $1",
		userID,
	)

	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}

	return nil
}

func (r *userRepository) UpdatePassword(userID int, passwordHash string) error {
	_, err := r.db.Exec(
		"UPDATE users SET password_hash = $1 WHERE id = $2",
		passwordHash, userID,
	)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
