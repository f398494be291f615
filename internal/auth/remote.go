package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/sony/gobreaker"
	"github.com/supabase-community/supabase-go"

	"github.com/iglide21/BabyBuddy-sub001/internal"
)

// TokenVerifier asks a remote auth service who a token belongs to.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*internal.User, error)
}

// SupabaseVerifier calls the Supabase auth API's /user endpoint.
type SupabaseVerifier struct {
	client *supabase.Client
}

func NewSupabaseVerifier(url, anonKey string) (*SupabaseVerifier, error) {
	client, err := supabase.NewClient(url, anonKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}
	return &SupabaseVerifier{client: client}, nil
}

var rejectedStatus = regexp.MustCompile(`response status code (401|403|404)\b`)

func (v *SupabaseVerifier) VerifyToken(ctx context.Context, token string) (*internal.User, error) {
	user, err := v.client.Auth.WithToken(token).GetUser()
	if err != nil {
		if rejectedStatus.MatchString(err.Error()) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return nil, err
	}
	return &internal.User{ID: user.ID.String(), Email: user.Email}, nil
}

// RemoteAuthProvider checks tokens with a TokenVerifier behind a circuit
// breaker. Rejected tokens do not count as failures; transport errors do.
type RemoteAuthProvider struct {
	verifier TokenVerifier
	cb       *gobreaker.CircuitBreaker
	logger   internal.Logger
}

func NewRemoteAuthProvider(verifier TokenVerifier, logger internal.Logger) *RemoteAuthProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "supabase-auth",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.8
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warnf("auth: circuit breaker %q changed from %v to %v", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrInvalidToken)
		},
	})
	return &RemoteAuthProvider{verifier: verifier, cb: cb, logger: logger}
}

func (a *RemoteAuthProvider) Authenticate(ctx context.Context, token string) (*internal.User, error) {
	res, err := a.cb.Execute(func() (interface{}, error) {
		return a.verifier.VerifyToken(ctx, token)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			a.logger.Warnf("auth: circuit open, rejecting request: %v", err)
		} else {
			a.logger.Errorf("auth: failed to call auth service: %v", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return res.(*internal.User), nil
}
