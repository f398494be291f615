package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iglide21/BabyBuddy-sub001/internal"
)

// DevUserID is the user a development token authenticates as.
const DevUserID = "00000000-0000-0000-0000-000000000001"

// Claims is the subset of a Supabase access token we read.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// LocalAuthProvider verifies HS256 tokens signed with the project's JWT
// secret. In development a fixed token may stand in for a real one.
type LocalAuthProvider struct {
	secret   []byte
	devToken string
	logger   internal.Logger
}

func NewLocalAuthProvider(secret, devToken string, logger internal.Logger) *LocalAuthProvider {
	return &LocalAuthProvider{secret: []byte(secret), devToken: devToken, logger: logger}
}

func (a *LocalAuthProvider) Authenticate(ctx context.Context, token string) (*internal.User, error) {
	if a.devToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(a.devToken)) == 1 {
		return &internal.User{ID: DevUserID, Email: "dev@localhost"}, nil
	}
	if len(a.secret) == 0 {
		a.logger.Warnf("auth: rejecting token, no JWT secret configured")
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		a.logger.Warnf("auth: invalid token: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &internal.User{ID: claims.Subject, Email: claims.Email}, nil
}

// SignToken issues a token LocalAuthProvider accepts. Used by the CLI and
// tests to mint development credentials.
func SignToken(secret string, user internal.User, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = user.ID
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Email: user.Email, Role: "authenticated", RegisteredClaims: claims})
	return t.SignedString([]byte(secret))
}
