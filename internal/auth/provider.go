package auth

import (
	"context"
	"errors"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/config"
)

var (
	// ErrInvalidToken means the token was checked and rejected.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnavailable means the token could not be checked right now.
	ErrUnavailable = errors.New("auth provider unavailable")
)

// Provider turns a bearer token into the user it was issued to.
type Provider interface {
	Authenticate(ctx context.Context, token string) (*internal.User, error)
}

// NewProvider verifies Supabase JWTs locally when the signing secret is
// configured and asks the Supabase auth API otherwise.
func NewProvider(cfg *config.Config, logger internal.Logger) (Provider, error) {
	if cfg.SupabaseJWTSecret != "" || cfg.Env == "development" {
		devToken := ""
		if cfg.Env == "development" {
			devToken = cfg.DevToken
		}
		return NewLocalAuthProvider(cfg.SupabaseJWTSecret, devToken, logger), nil
	}
	verifier, err := NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	if err != nil {
		return nil, err
	}
	return NewRemoteAuthProvider(verifier, logger), nil
}
