package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the minimum length for the HS256 signing key.
// 32 bytes (256 bits) is the minimum recommended for HMAC-SHA256.
const MinKeyLength = 32

const (
	claimUserID    = "user_id"
	claimTokenType = "token_type"

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrTokenExpired        = errors.New("token expired")
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidSecretLength = errors.New("invalid secret length")
)

// TokenPair is the short-lived access / longer-lived refresh pair issued
// after a successful authentication.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type TokenManager struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) (*TokenManager, error) {
	if len(secret) < MinKeyLength {
		return nil, ErrInvalidSecretLength
	}

	return &TokenManager{
		signingKey: []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func (m *TokenManager) IssuePair(userID int) (TokenPair, error) {
	access, err := m.sign(userID, tokenTypeAccess, m.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := m.sign(userID, tokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (m *TokenManager) sign(userID int, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		claimUserID:    userID,
		claimTokenType: tokenType,
		"iat":          now.Unix(),
		"exp":          now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.signingKey)
}

// ParseAccess verifies an access token and returns the user ID it carries.
// Refresh tokens are rejected here; they only ever mint new pairs.
func (m *TokenManager) ParseAccess(raw string) (int, error) {
	return m.parse(raw, tokenTypeAccess)
}

// ParseRefresh verifies a refresh token and returns the user ID it carries.
func (m *TokenManager) ParseRefresh(raw string) (int, error) {
	return m.parse(raw, tokenTypeRefresh)
}

func (m *TokenManager) parse(raw, wantType string) (int, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))

	token, err := parser.Parse(raw, func(t *jwt.Token) (any, error) {
		return m.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}

	tokenType, _ := claims[claimTokenType].(string)
	if tokenType != wantType {
		return 0, ErrInvalidToken
	}

	userID, ok := claims[claimUserID].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}

	return int(userID), nil
}
