// Package auth resolves the acting user of a request and decides what that
// user may do with a prompt.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/dsjohal14/promptlib/internal/libs/obs"
	"github.com/dsjohal14/promptlib/internal/scope/db"
	"github.com/dsjohal14/promptlib/internal/scope/prompt"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor of stored password hashes.
const BcryptCost = 12

var (
	// ErrUnauthenticated means the request carried no usable identity.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidCredentials means credentials were sent but did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// HasRole reports whether u holds one of roles. A nil user has none.
func HasRole(u *prompt.User, roles ...prompt.Role) bool {
	if u == nil {
		return false
	}
	return slices.Contains(roles, u.Role)
}

// CanModify reports whether u may edit a prompt written by authorID.
// Owners, editors and reviewers may edit any prompt; users only their own.
func CanModify(u *prompt.User, authorID string) bool {
	if u == nil {
		return false
	}
	if HasRole(u, prompt.RoleOwner, prompt.RoleEditor, prompt.RoleReviewer) {
		return true
	}
	return u.ID == authorID
}

// CanDelete reports whether u may deprecate prompts.
func CanDelete(u *prompt.User) bool {
	return HasRole(u, prompt.RoleOwner, prompt.RoleEditor)
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type userKey struct{}

// WithUser returns a context carrying u as the acting user.
func WithUser(ctx context.Context, u prompt.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the acting user stored by WithUser.
func UserFrom(ctx context.Context) (prompt.User, bool) {
	u, ok := ctx.Value(userKey{}).(prompt.User)
	return u, ok
}

// UserSource looks up accounts. db.Storage satisfies it.
type UserSource interface {
	UserByEmail(ctx context.Context, email string) (prompt.User, error)
	FirstUser(ctx context.Context) (prompt.User, error)
}

// Authenticator resolves the user behind a request from HTTP Basic
// credentials (email and password).
type Authenticator struct {
	users     UserSource
	devBypass bool
	logger    zerolog.Logger
}

// NewAuthenticator creates an authenticator. With devBypass set, requests
// without credentials act as the first user; callers pass
// config.DevBypassAllowed so the bypass never runs in production.
func NewAuthenticator(users UserSource, devBypass bool) *Authenticator {
	a := &Authenticator{
		users:     users,
		devBypass: devBypass,
		logger:    obs.Logger("auth"),
	}
	if devBypass {
		a.logger.Warn().Msg("DEV_AUTH_BYPASS is active, requests without credentials act as the first user")
	}
	return a
}

// Authenticate returns the acting user of r.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) (prompt.User, error) {
	email, password, ok := r.BasicAuth()
	if ok {
		return a.login(ctx, email, password)
	}

	if !a.devBypass {
		return prompt.User{}, ErrUnauthenticated
	}

	u, err := a.users.FirstUser(ctx)
	if errors.Is(err, db.ErrNotFound) {
		return prompt.User{}, ErrUnauthenticated
	}
	if err != nil {
		return prompt.User{}, fmt.Errorf("failed to load development user: %w", err)
	}
	a.logger.Debug().Str("user_id", u.ID).Msg("development bypass")
	return u, nil
}

func (a *Authenticator) login(ctx context.Context, email, password string) (prompt.User, error) {
	u, err := a.users.UserByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return prompt.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return prompt.User{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		a.logger.Info().Str("email", u.Email).Msg("rejected credentials")
		return prompt.User{}, ErrInvalidCredentials
	}
	return u, nil
}
