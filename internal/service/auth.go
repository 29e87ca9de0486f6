// Account business logic.
//
//	AuthHandler (HTTP) → AuthService → UserRepository (DB)
//	                                 ↘ TokenService / PasswordService
//
// Two ways in: email + password, or a GitHub profile. Both end in the same
// place, a token issued for the account's email and role.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/college-board/internal/apperror"
	"github.com/sakif/college-board/internal/auth"
	"github.com/sakif/college-board/internal/model"
	"github.com/sakif/college-board/internal/repository"
)

const (
	MinPasswordLength = 8
	MaxUsernameLength = 50
)

// errBadCredentials is deliberately the same for an unknown email and a
// wrong password so login does not reveal which accounts exist.
var errBadCredentials = apperror.Unauthenticated("invalid email or password")

// AuthService registers accounts and issues tokens.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	ttl       time.Duration
	logger    *slog.Logger
}

// NewAuthService wires the dependencies. ttl is the lifetime of every token
// it issues (ACCESS_TOKEN_TTL).
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	ttl time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		ttl:       ttl,
		logger:    logger,
	}
}

// AuthResult bundles the account and its freshly issued token.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Register creates a ROLE_USER account. A taken email is apperror.ErrConflict.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, apperror.ValidationFailed("email", "a valid email address is required")
	}
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	if len(password) < MinPasswordLength || len(password) > auth.MaxPasswordBytes {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be between %d and %d bytes", MinPasswordLength, auth.MaxPasswordBytes))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		Email:        email,
		Username:     username,
		Role:         model.RoleUser,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: registering %s: %w", email, err)
	}

	s.logger.Info("user registered", slog.Int64("userID", user.ID), slog.String("email", user.Email))
	return user, nil
}

// Login checks the password and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	return s.issue(user)
}

// LoginWithGitHub upserts the account keyed by the GitHub email and issues a
// token. A returning user keeps id and role; only the username follows the
// GitHub login.
func (s *AuthService) LoginWithGitHub(ctx context.Context, gh *auth.GitHubUser) (*AuthResult, error) {
	if gh == nil {
		return nil, errors.New("service/auth: GitHub user must not be nil")
	}
	if gh.Email == "" {
		return nil, apperror.ValidationFailed("email", "GitHub account has no usable email")
	}

	user := &model.User{
		Email:    gh.Email,
		Username: gh.Login,
		Role:     model.RoleUser,
	}
	if err := s.users.UpsertUserByEmail(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user %s: %w", gh.Email, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.Int64("userID", user.ID),
		slog.String("login", gh.Login),
	)
	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.Email, string(user.Role), s.ttl)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %d: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// ListUsers returns every account ordered by id. Callers restrict it to
// administrators.
func (s *AuthService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/auth: listing users: %w", err)
	}
	return users, nil
}
