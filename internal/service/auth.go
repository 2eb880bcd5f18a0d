// Package service contains the business logic layer of the application.
//
//	Handler (HTTP)  → parses requests, writes responses
//	Service         → validates input, enforces rules, orchestrates
//	Repository      → reads and writes the database
//
// Services accept plain Go values and return domain errors from apperror;
// they never see an *http.Request. Each service depends on repository
// interfaces, so tests swap in the in-memory fakes from the _test files.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Ly-yang/wechat-editor/internal/apperror"
	"github.com/Ly-yang/wechat-editor/internal/auth"
	"github.com/Ly-yang/wechat-editor/internal/metrics"
	"github.com/Ly-yang/wechat-editor/internal/model"
	"github.com/Ly-yang/wechat-editor/internal/repository"
)

const (
	MaxUsernameLength = 50
	MaxEmailLength    = 254
)

// AuthService registers accounts, checks credentials and issues tokens.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the account and its freshly issued token.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates an account and signs the new user in.
//
// Username and email are trimmed; the email is lower-cased so the same
// mailbox cannot register twice with different capitalisation. The password
// is kept verbatim.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	switch {
	case username == "":
		return nil, apperror.ValidationFailed("username", "username is required")
	case utf8.RuneCountInString(username) > MaxUsernameLength:
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	case email == "":
		return nil, apperror.ValidationFailed("email", "email is required")
	case len(email) > MaxEmailLength || !validEmail(email):
		return nil, apperror.ValidationFailed("email", "email address is not valid")
	case password == "":
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrDuplicate) {
			metrics.AuthEventsTotal.WithLabelValues("register", "duplicate").Inc()
			return nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("registering user: %w", err)
	}

	metrics.AuthEventsTotal.WithLabelValues("register", "ok").Inc()
	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issue(user)
}

// Login checks an email and password.
//
// An unknown email and a wrong password produce the same InvalidCredentials
// error, and both paths run one bcrypt comparison, so neither the response
// nor its timing tells a caller which emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("looking up user: %w", err)
		}
		s.passwords.BurnCompare(password)
		metrics.AuthEventsTotal.WithLabelValues("login", "failed").Inc()
		return nil, apperror.InvalidCredentials()
	}

	// Accounts created through GitHub have no password to check.
	if user.PasswordHash == "" {
		s.passwords.BurnCompare(password)
		metrics.AuthEventsTotal.WithLabelValues("login", "failed").Inc()
		return nil, apperror.InvalidCredentials()
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("stored password hash is unreadable",
				slog.Int64("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		metrics.AuthEventsTotal.WithLabelValues("login", "failed").Inc()
		return nil, apperror.InvalidCredentials()
	}

	metrics.AuthEventsTotal.WithLabelValues("login", "ok").Inc()
	s.logger.Info("user logged in", slog.Int64("userID", user.ID))

	return s.issue(user)
}

// LoginWithGitHub signs in the account linked to a GitHub profile, creating
// it on first use. A GitHub login that collides with an existing username is
// suffixed with the GitHub id.
func (s *AuthService) LoginWithGitHub(ctx context.Context, gh *auth.GitHubUser) (*AuthResult, error) {
	if gh == nil || gh.ID == 0 {
		return nil, fmt.Errorf("service/auth: GitHub user must not be empty")
	}

	user, err := s.users.GetUserByGitHubID(ctx, gh.ID)
	switch {
	case err == nil:
		if gh.AvatarURL != "" && gh.AvatarURL != user.Avatar {
			if err := s.users.UpdateUserAvatar(ctx, user.ID, gh.AvatarURL); err != nil {
				s.logger.Warn("failed to refresh avatar",
					slog.Int64("userID", user.ID),
					slog.String("error", err.Error()),
				)
			} else {
				user.Avatar = gh.AvatarURL
			}
		}
	case errors.Is(err, apperror.ErrNotFound):
		user, err = s.createGitHubUser(ctx, gh)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("looking up GitHub user %d: %w", gh.ID, err)
	}

	metrics.AuthEventsTotal.WithLabelValues("github", "ok").Inc()
	s.logger.Info("user authenticated via GitHub",
		slog.Int64("userID", user.ID),
		slog.String("login", gh.Login),
	)
	return s.issue(user)
}

func (s *AuthService) createGitHubUser(ctx context.Context, gh *auth.GitHubUser) (*model.User, error) {
	ghID := gh.ID
	idStr := strconv.FormatInt(gh.ID, 10)

	email := normalizeEmail(gh.Email)
	if email == "" {
		email = idStr + "+" + strings.ToLower(gh.Login) + "@users.noreply.github.com"
	}

	candidates := []string{gh.Login, gh.Login + "-" + idStr}
	var lastErr error
	for _, name := range candidates {
		user := &model.User{Username: name, Email: email, Avatar: gh.AvatarURL, GitHubID: &ghID}
		err := s.users.CreateUser(ctx, user)
		if err == nil {
			return user, nil
		}
		lastErr = err

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) || appErr.Field != "username" {
			break
		}
	}
	return nil, fmt.Errorf("creating GitHub user %d: %w", gh.ID, lastErr)
}

// Profile returns the account behind an authenticated identity.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*model.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(auth.Identity{UserID: user.ID, Username: user.Username})
	if err != nil {
		return nil, fmt.Errorf("issuing token for user %d: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail accepts a bare address ("a@b.c"), not a display-name form.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
