// Package auth decodes and validates dawn-backend bearer tokens.
//
// Tokens are issued by the external dawn backend and validated here on
// every request. Validation is always signature-verified (HS256 against
// the shared secret) with issuer, audience, and expiry checks; there is
// no decode-only path.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single error surfaced to callers for any
// authentication failure. Every fine-grained cause below wraps it so the
// boundary never reveals which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// Fine-grained causes, for logs and tests only. All satisfy
// errors.Is(err, ErrInvalidToken).
var (
	ErrMalformedToken   = fmt.Errorf("%w: malformed token", ErrInvalidToken)
	ErrTokenExpired     = fmt.Errorf("%w: token expired", ErrInvalidToken)
	ErrIssuerMismatch   = fmt.Errorf("%w: issuer mismatch", ErrInvalidToken)
	ErrAudienceMismatch = fmt.Errorf("%w: audience mismatch", ErrInvalidToken)
	ErrBadSignature     = fmt.Errorf("%w: signature verification failed", ErrInvalidToken)
)

// Claims is the payload of a dawn-backend token.
type Claims struct {
	jwt.RegisteredClaims
	CompanyID string  `json:"company_id,omitempty"`
	Role      string  `json:"role,omitempty"`
	BranchID  *string `json:"branch_id,omitempty"`
	IsDriver  bool    `json:"is_driver,omitempty"`
	DriverID  string  `json:"driver_id,omitempty"`
}

// Verifier validates bearer tokens against the shared secret.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewVerifier creates a Verifier for the given secret, expected issuer,
// and expected audience.
func NewVerifier(secret, issuer, audience string) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}
}

// Verify parses and validates a bearer token, returning its claims.
// The signature is always checked; exp is enforced when present.
func (v *Verifier) Verify(token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, ErrMalformedToken
	}

	claims := Claims{}
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
	)
	if err != nil {
		return Claims{}, classify(err)
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuerMismatch
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudienceMismatch
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}

// Sign mints a token with the given claims. The production issuer is the
// external dawn backend; this is for tests and the dev CLI.
func Sign(claims Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// UnverifiedSubject extracts the sub claim without validating the token.
// Useful for annotating request logs; never use it for authentication.
func UnverifiedSubject(token string) string {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ""
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return ""
	}
	var payload struct {
		Sub string `json:"sub"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return payload.Sub
}
