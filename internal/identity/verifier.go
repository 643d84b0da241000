// Package identity verifies identity provider ID tokens.
package identity

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingKeyID   = errors.New("identity: token header has no kid")
	ErrUnknownKeyID   = errors.New("identity: no public key for kid")
	ErrMissingSubject = errors.New("identity: token has no subject")

	// ErrKeysUnavailable means the provider's signing keys could not be
	// fetched; the token itself may be valid.
	ErrKeysUnavailable = errors.New("identity: signing keys unavailable")
)

// Claims are the fields of a Firebase ID token the backend relies on.
type Claims struct {
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates a bearer token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// KeySource resolves the public key for a key id.
type KeySource interface {
	Key(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// FirebaseVerifier checks RS256 ID tokens issued for one Firebase project.
type FirebaseVerifier struct {
	keys   KeySource
	parser *jwt.Parser
}

func NewFirebaseVerifier(projectID string, keys KeySource) *FirebaseVerifier {
	return &FirebaseVerifier{
		keys: keys,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithAudience(projectID),
			jwt.WithIssuer(Issuer(projectID)),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
	}
}

// Issuer returns the expected iss claim for projectID.
func Issuer(projectID string) string {
	return "https://securetoken.google.com/" + projectID
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrMissingKeyID
		}
		return v.keys.Key(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("identity: verify token: %w", err)
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}
