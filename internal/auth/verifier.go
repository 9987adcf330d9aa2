package auth

import (
	"context"
	"errors"
	"fmt"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
)

// TokenVerifier validates a Google ID token and returns its identity.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (Identity, error)
}

// GoogleVerifier checks ID tokens against Google's signing keys for one
// OAuth client.
type GoogleVerifier struct {
	ClientID string
}

// NewGoogleVerifier constructs the verifier.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{ClientID: clientID}
}

// Verify implements TokenVerifier.
func (g *GoogleVerifier) Verify(_ context.Context, idToken string) (Identity, error) {
	if idToken == "" {
		return Identity{}, errors.New("auth: id token missing")
	}
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{g.ClientID}); err != nil {
		return Identity{}, fmt.Errorf("auth: verify id token: %w", err)
	}
	claims, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return Identity{}, fmt.Errorf("auth: decode id token: %w", err)
	}
	return Identity{Subject: claims.Sub, Email: claims.Email, Name: claims.Name}, nil
}
