// Package auth drives the viewer's sign-in lifecycle against the upstream
// and upgrades or downgrades the gateway session to match.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jsamuelsen/quoteswipe/internal/app"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
	"github.com/jsamuelsen/quoteswipe/internal/platform/cache"
	"github.com/jsamuelsen/quoteswipe/internal/platform/logging"
	"github.com/jsamuelsen/quoteswipe/internal/ports"
)

// Session is the part of a viewer session the auth flows touch.
type Session interface {
	Context(ctx context.Context) context.Context
	Viewer() ports.Viewer
	Credentials() domain.Credentials
	Authenticated() bool
	SignIn(ctx context.Context, res *domain.AuthResult) error
	SignOut(ctx context.Context) error
}

// Options configure a Service. Provider is required.
type Options struct {
	Provider ports.AuthProvider
	Executor *app.Executor
	Clock    cache.Clock
	Logger   *slog.Logger
}

// Service runs sign-in, sign-up and sign-out for a session.
type Service struct {
	provider ports.AuthProvider
	exec     *app.Executor
	clock    cache.Clock
}

// New creates the service.
func New(opts Options) *Service {
	if opts.Provider == nil {
		panic("auth: provider is required")
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Executor == nil {
		opts.Executor = app.NewExecutor(opts.Logger)
	}

	if opts.Clock == nil {
		opts.Clock = cache.SystemClock{}
	}

	return &Service{
		provider: opts.Provider,
		exec:     opts.Executor,
		clock:    opts.Clock,
	}
}

// signIn is the shared shape of every credential exchange: in is validated,
// exchanged upstream, confirmed with a Me call under the new token, then
// archived into the session.
func signIn[I any](
	s *Service,
	sess Session,
	name string,
	validate func(I) error,
	exchange func(ctx context.Context, in I) (*domain.AuthResult, error),
) app.Operation[I, *domain.AuthResult, *domain.AuthResult, *domain.User] {
	return app.Operation[I, *domain.AuthResult, *domain.AuthResult, *domain.User]{
		Name: name,
		Validate: func(_ context.Context, in I) error {
			return validate(in)
		},
		Perform: func(ctx context.Context, in I) (*domain.AuthResult, error) {
			return exchange(sess.Context(ctx), in)
		},
		Verify: func(ctx context.Context, _ I, res *domain.AuthResult) (*domain.AuthResult, error) {
			return s.verify(ctx, sess, name, res)
		},
		Archive: func(ctx context.Context, _ I, res *domain.AuthResult) error {
			return sess.SignIn(ctx, res)
		},
		Respond: func(_ context.Context, _ I, res *domain.AuthResult) (*domain.User, error) {
			user := res.User
			return &user, nil
		},
	}
}

func (s *Service) verify(ctx context.Context, sess Session, op string, res *domain.AuthResult) (*domain.AuthResult, error) {
	if res == nil || res.Credentials.Token == "" {
		return nil, domain.NewUnavailableError("auth", op+" returned no session token")
	}

	if res.Credentials.ExpiresAt.IsZero() {
		res.Credentials.ExpiresAt = TokenExpiry(res.Credentials.Token)
	}

	if res.Credentials.Expired(s.clock.Now()) {
		return nil, domain.NewUnauthenticatedError(op)
	}

	v := sess.Viewer()
	v.Token = res.Credentials.Token
	v.UserID = res.User.ID

	me, err := s.provider.Me(ports.WithViewer(sess.Context(ctx), &v))
	if err != nil {
		return nil, fmt.Errorf("confirming session: %w", err)
	}

	if res.User.ID != "" && me.ID != res.User.ID {
		return nil, domain.NewConflictError("session", "upstream reported a different user")
	}

	res.User = *me

	return res, nil
}

// Login signs the session in with email and password.
func (s *Service) Login(ctx context.Context, sess Session, in LoginInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)

	op := signIn(s, sess, "login", LoginInput.Validate,
		func(ctx context.Context, in LoginInput) (*domain.AuthResult, error) {
			return s.provider.Login(ctx, in.Email, in.Password)
		})

	return app.Execute(ctx, s.exec, op, in)
}

// Register creates an upstream account and signs the session in.
func (s *Service) Register(ctx context.Context, sess Session, in RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	op := signIn(s, sess, "register", RegisterInput.Validate,
		func(ctx context.Context, in RegisterInput) (*domain.AuthResult, error) {
			return s.provider.Register(ctx, in.Name, in.Email, in.Password)
		})

	return app.Execute(ctx, s.exec, op, in)
}

// Google exchanges a Google identity credential for an upstream session.
func (s *Service) Google(ctx context.Context, sess Session, credential string) (*domain.User, error) {
	validate := func(c string) error {
		if strings.TrimSpace(c) == "" {
			return domain.FieldErrors{FieldCredential: "Google credential is required"}
		}

		return nil
	}

	op := signIn(s, sess, "google", validate, s.provider.Google)

	return app.Execute(ctx, s.exec, op, credential)
}

// Logout ends the upstream session when there is one and downgrades the
// gateway session to a guest. Upstream failures are logged and ignored.
func (s *Service) Logout(ctx context.Context, sess Session) error {
	if sess.Authenticated() {
		if err := s.provider.Logout(sess.Context(ctx)); err != nil {
			logging.FromContext(ctx).DebugContext(ctx, "upstream logout failed", slog.Any("error", err))
		}
	}

	return sess.SignOut(ctx)
}

// Me returns the signed-in user. An expired or rejected token downgrades the
// session and returns an unauthenticated error.
func (s *Service) Me(ctx context.Context, sess Session) (*domain.User, error) {
	if !sess.Authenticated() {
		return nil, domain.NewUnauthenticatedError("me")
	}

	if sess.Credentials().Expired(s.clock.Now()) {
		s.downgrade(ctx, sess, "token expired")
		return nil, domain.NewUnauthenticatedError("me")
	}

	user, err := s.provider.Me(sess.Context(ctx))
	if err != nil {
		if domain.IsUnauthenticated(err) {
			s.downgrade(ctx, sess, "token rejected")
		}

		return nil, err
	}

	return user, nil
}

func (s *Service) downgrade(ctx context.Context, sess Session, reason string) {
	logging.FromContext(ctx).InfoContext(ctx, "signing session out", slog.String("reason", reason))

	if err := sess.SignOut(ctx); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "reloading guest feed failed", slog.Any("error", err))
	}
}

// ForgotPassword asks the upstream to mail a reset link.
func (s *Service) ForgotPassword(ctx context.Context, sess Session, email string) error {
	email = strings.TrimSpace(email)

	if problem := CheckEmail(email); problem != "" {
		return domain.FieldErrors{FieldEmail: problem}
	}

	return s.provider.ForgotPassword(sess.Context(ctx), email)
}

// UpdatePassword changes the signed-in user's password.
func (s *Service) UpdatePassword(ctx context.Context, sess Session, in PasswordInput) error {
	if !sess.Authenticated() {
		return domain.NewUnauthenticatedError("update password")
	}

	if err := in.Validate(); err != nil {
		return err
	}

	return s.provider.UpdatePassword(sess.Context(ctx), in.Password)
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// It returns the zero time for opaque tokens or tokens without exp.
func TokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}

	return exp.Time
}
