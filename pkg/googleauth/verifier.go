package googleauth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

var ErrMissingEmail = errors.New("google token missing email")

// Claims are the identity fields extracted from a verified Google ID token.
type Claims struct {
	Email string
	Name  string
}

// Verifier checks a raw ID token from Google Identity Services.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// IDTokenVerifier validates tokens against Google's public keys and the
// configured OAuth client ID (audience).
type IDTokenVerifier struct {
	clientID string
}

func NewIDTokenVerifier(clientID string) *IDTokenVerifier {
	return &IDTokenVerifier{clientID: clientID}
}

func (v *IDTokenVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	payload, err := idtoken.Validate(ctx, rawToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate ID token: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, ErrMissingEmail
	}

	name, _ := payload.Claims["name"].(string)

	return &Claims{Email: email, Name: name}, nil
}
