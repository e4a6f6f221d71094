package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every way a session token can fail to verify.
var ErrInvalidToken = errors.New("invalid session token")

// Claims is the subset of the provider's access-token claims we read.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 access tokens signed with the provider's secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Verify parses tok and returns the user it names.  Tokens without an
// expiry, a subject, or an e-mail are rejected.
func (v *Verifier) Verify(tok string) (*User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tok, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" || claims.Email == "" {
		return nil, ErrInvalidToken
	}
	return &User{ID: claims.Subject, Email: strings.ToLower(claims.Email)}, nil
}

// Sign issues a token the Verifier accepts.  Used by tests and by
// intakectl for local development without the hosted provider.
func (v *Verifier) Sign(u User, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
