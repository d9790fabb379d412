package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/model"
)

// ErrNoSession is returned when no access token is stored.
var ErrNoSession = errors.New("not logged in")

// TokenStore persists the access token. credential.Store satisfies it.
type TokenStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Backend is the subset of the REST client the session needs.
type Backend interface {
	Login(ctx context.Context, creds api.Credentials) (string, error)
	Refresh(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	CreateUser(ctx context.Context, u model.NewUser) (*model.User, error)
}

// Session resolves the current user from the stored access token and runs
// the login, refresh and logout flows.
type Session struct {
	backend  Backend
	tokens   TokenStore
	verifier *Verifier
}

// New creates a Session. A nil verifier decodes tokens without verification.
func New(backend Backend, tokens TokenStore, verifier *Verifier) *Session {
	if verifier == nil {
		verifier, _ = NewVerifier("")
	}
	return &Session{backend: backend, tokens: tokens, verifier: verifier}
}

// TokenSource returns an api.TokenSource reading the stored access token.
// A missing token yields an empty string so requests go out without
// an Authorization header.
func TokenSource(tokens TokenStore) api.TokenSource {
	return api.TokenFunc(func() (string, error) {
		token, err := tokens.Get(credential.AccessTokenKey)
		if errors.Is(err, credential.ErrNotFound) {
			return "", nil
		}
		return token, err
	})
}

// Token returns the stored access token, or ErrNoSession.
func (s *Session) Token() (string, error) {
	token, err := s.tokens.Get(credential.AccessTokenKey)
	if errors.Is(err, credential.ErrNotFound) || (err == nil && token == "") {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// Login authenticates with the backend. On success the token is stored under
// the accessToken key and onSuccess, when non-nil, is called with it.
func (s *Session) Login(
	ctx context.Context,
	email string,
	password string,
	onSuccess func(token string),
) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return errors.New("email and password are required")
	}

	token, err := s.backend.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}

	if err := s.tokens.Set(credential.AccessTokenKey, token); err != nil {
		return fmt.Errorf("storing access token: %w", err)
	}

	log.WithField("email", email).Info("logged in")
	if onSuccess != nil {
		onSuccess(token)
	}
	return nil
}

// Register creates an account. It does not log the user in.
func (s *Session) Register(ctx context.Context, u model.NewUser) (*model.User, error) {
	if strings.TrimSpace(u.Email) == "" || u.Password == "" {
		return nil, errors.New("email and password are required")
	}
	return s.backend.CreateUser(ctx, u)
}

// Identity decodes the stored access token into the current user.
func (s *Session) Identity() (model.User, error) {
	token, err := s.Token()
	if err != nil {
		return model.User{}, err
	}
	return s.verifier.Identity(token)
}

// Resume returns the current user, refreshing the access token once through
// the refresh_token cookie when the stored token has expired.
func (s *Session) Resume(ctx context.Context) (model.User, error) {
	user, err := s.Identity()
	if !errors.Is(err, ErrTokenExpired) {
		return user, err
	}

	if _, err := s.Refresh(ctx); err != nil {
		return model.User{}, fmt.Errorf("resuming session: %w", err)
	}
	return s.Identity()
}

// Refresh fetches and stores a new access token.
func (s *Session) Refresh(ctx context.Context) (string, error) {
	token, err := s.backend.Refresh(ctx)
	if err != nil {
		return "", err
	}
	if err := s.tokens.Set(credential.AccessTokenKey, token); err != nil {
		return "", fmt.Errorf("storing access token: %w", err)
	}
	return token, nil
}

// Logout tells the backend to drop the refresh token and forgets the access
// token locally. A backend failure is logged, not returned.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.backend.Logout(ctx); err != nil {
		log.WithError(err).Warn("backend logout failed")
	}
	if err := s.tokens.Delete(credential.AccessTokenKey); err != nil {
		return fmt.Errorf("forgetting access token: %w", err)
	}
	return nil
}
