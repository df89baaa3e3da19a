package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shopfloor/internal/auth/revocation"
	dErrors "shopfloor/pkg/domain-errors"
	"shopfloor/pkg/platform/sentinel"
	"shopfloor/pkg/requestcontext"
)

// TokenIssuer abstracts access token generation and introspection.
type TokenIssuer interface {
	GenerateAccessToken(userID int64, email, name, role string, expiresIn time.Duration) (string, error)
	// TokenMeta extracts the token identifier and remaining lifetime for
	// revocation on logout.
	TokenMeta(token string) (jti string, ttl time.Duration, err error)
}

// SignupInput carries the fields for registering a user.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// LoginResult is a successful authentication: the user and a signed token.
type LoginResult struct {
	User        *User
	AccessToken string
	ExpiresIn   time.Duration
}

// Service handles registration, login, and logout.
type Service struct {
	users    UserStore
	issuer   TokenIssuer
	revoked  revocation.List
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewService(users UserStore, issuer TokenIssuer, revoked revocation.List, tokenTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		issuer:   issuer,
		revoked:  revoked,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Signup registers a new user. Emails are normalized to lowercase and must be
// unique; the role must belong to the fixed role set.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "name, email and password are required")
	}
	if err := ValidateRole(in.Role); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	u := &User{
		Name:         in.Name,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Role:         in.Role,
		PasswordHash: string(hash),
		CreatedAt:    requestcontext.Now(ctx),
	}
	created, err := s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", created.ID,
		"role", created.Role,
	)
	return created, nil
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password return the same error so accounts cannot be enumerated.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.issuer.GenerateAccessToken(u.ID, u.Email, u.Name, u.Role, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", u.ID)
	return &LoginResult{User: u, AccessToken: token, ExpiresIn: s.tokenTTL}, nil
}

// Logout revokes the presented token for its remaining lifetime. Revoking an
// already-expired or malformed token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	jti, ttl, err := s.issuer.TokenMeta(token)
	if err != nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, jti, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}

	s.logger.InfoContext(ctx, "token revoked", "jti", jti)
	return nil
}
