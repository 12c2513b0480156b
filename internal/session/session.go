package session

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/catalog"
	"storefront/internal/models"
	"storefront/internal/tokenstore"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// Navigator receives the navigation side effect of a forced logout.
// The UI shell decides what "go to login" means.
type Navigator interface {
	ToLogin()
}

// NavigatorFunc adapts a plain function to the Navigator interface.
type NavigatorFunc func()

func (f NavigatorFunc) ToLogin() { f() }

// Session ties the auth endpoints to the token store. An unauthorized
// response on a protected resource is fatal to the session: the stored
// token is cleared and the navigator is sent to the login entry point,
// exactly once per failure, never a silent retry.
type Session struct {
	catalog *catalog.Client
	tokens  tokenstore.Store
	nav     Navigator
	logger  *zap.Logger
}

// New creates a session
func New(c *catalog.Client, tokens tokenstore.Store, nav Navigator) *Session {
	return &Session{
		catalog: c,
		tokens:  tokens,
		nav:     nav,
		logger:  util.GetLogger(),
	}
}

// Login exchanges credentials for a token and stores it.
func (s *Session) Login(ctx context.Context, username, password string) error {
	ctx, span := util.StartSpan(ctx, "session.Login")
	defer span.End()

	token, err := s.catalog.Login(ctx, username, password)
	if err != nil {
		return err
	}

	if err := s.tokens.Save(ctx, token.AccessToken); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	s.logger.Info("User logged in", zap.String("username", username))
	return nil
}

// Signup registers a new user. It does not log the user in.
func (s *Session) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "session.Signup")
	defer span.End()

	return s.catalog.Signup(ctx, username, email, password)
}

// CurrentUser fetches the profile behind the stored token. With no
// token stored the caller is sent to login. With a token the service
// rejects, the token is cleared first, then the navigator fires.
func (s *Session) CurrentUser(ctx context.Context) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "session.CurrentUser")
	defer span.End()

	token, err := s.tokens.Load(ctx)
	if errors.Is(err, tokenstore.ErrNoToken) {
		s.nav.ToLogin()
		return nil, catalog.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	user, err := s.catalog.CurrentUser(ctx, token)
	if errors.Is(err, catalog.ErrUnauthorized) {
		if clearErr := s.tokens.Clear(ctx); clearErr != nil {
			s.logger.Error("Failed to clear token after unauthorized response", zap.Error(clearErr))
		}
		util.ForcedLogoutsTotal.Inc()
		s.logger.Warn("Session expired, forcing logout")
		s.nav.ToLogin()
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Logout clears the stored token and navigates to login.
func (s *Session) Logout(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "session.Logout")
	defer span.End()

	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}

	s.logger.Info("User logged out")
	s.nav.ToLogin()
	return nil
}

// LoggedIn reports whether a token is stored. It says nothing about
// whether the service still accepts it.
func (s *Session) LoggedIn(ctx context.Context) bool {
	_, err := s.tokens.Load(ctx)
	return err == nil
}
