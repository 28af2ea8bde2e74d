// Package service holds the business rules behind the HTTP handlers.
package service

import (
	"context"
	"log/slog"
	"sync"

	"blogshare/internal/middleware"
	"blogshare/internal/models"
	"blogshare/internal/observability"
	"blogshare/internal/repository"
	"blogshare/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// Identity is what a successful login hands back to the client.
type Identity struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *SessionTokens
	cost     int
}

func NewAuthService(userRepo repository.UserRepository, tokens *SessionTokens) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens, cost: bcrypt.DefaultCost}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// timingDummyHash is compared against on unknown handles so both login failures cost one bcrypt run.
func timingDummyHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("blogshare-timing-equalizer"), bcrypt.DefaultCost)
	})
	return dummyHash
}

// Register creates an account for username. The returned user carries no secret material.
func (s *AuthService) Register(ctx context.Context, username, password string) (_ *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AuthService", "Register")
	defer func() { observability.EndSpan(span, err) }()
	defer func() { recordAuthAttempt("register", err) }()

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Username: username, Password: string(hashed)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user registered", slog.Uint64("user_id", uint64(user.ID)))
	user.Password = ""
	return user, nil
}

// Login checks the secret for username. Unknown handles and wrong secrets are indistinguishable.
func (s *AuthService) Login(ctx context.Context, username, password string) (_ *Identity, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AuthService", "Login")
	defer func() { observability.EndSpan(span, err) }()
	defer func() { recordAuthAttempt("login", err) }()

	if username == "" || password == "" {
		return nil, models.NewInvalidCredentialsError()
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(timingDummyHash(), []byte(password))
		return nil, models.NewInvalidCredentialsError()
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return nil, models.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &Identity{ID: user.ID, Username: user.Username, Token: token}, nil
}

func recordAuthAttempt(operation string, err error) {
	outcome := "success"
	if err != nil {
		switch models.CodeOf(err) {
		case models.CodeConflict:
			outcome = "conflict"
		case models.CodeInvalidCredentials:
			outcome = "invalid_credentials"
		case models.CodeValidation:
			outcome = "invalid_input"
		default:
			outcome = "error"
		}
	}
	middleware.AuthAttempts.WithLabelValues(operation, outcome).Inc()
}
