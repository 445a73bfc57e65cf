package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/weld_shop/internal/events"
	"github.com/Skotchmaster/weld_shop/internal/hash"
	"github.com/Skotchmaster/weld_shop/internal/logging"
	"github.com/Skotchmaster/weld_shop/internal/models"
	"github.com/Skotchmaster/weld_shop/internal/repo"
	"github.com/Skotchmaster/weld_shop/internal/tokens"
	"github.com/Skotchmaster/weld_shop/internal/transport"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Service
	Events *events.Producer
}

// Register creates a USER account. Username and email must both be
// unused.
func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password required", ErrValidation)
	}

	if _, err := s.Repo.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("%w: username %q taken", ErrConflict, req.Username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var email *string
	if req.Email != "" {
		if _, err := s.Repo.GetUserByEmail(ctx, req.Email); err == nil {
			return nil, fmt.Errorf("%w: email %q taken", ErrConflict, req.Email)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		email = &req.Email
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
		PostalCode:   req.PostalCode,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("user registered", "username", user.Username)
	if s.Events != nil {
		err := s.Events.Publish(ctx, events.TopicUsers, user.Username, map[string]any{
			"action": "registered", "id": user.ID, "username": user.Username,
		})
		if err != nil {
			logging.FromContext(ctx).Warn("event publish failed", "topic", events.TopicUsers, "error", err)
		}
	}

	return &user, nil
}

// Login verifies the password and returns a token pair. Unknown user
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*transport.TokenResponse, error) {
	user, err := s.Repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: bad credentials", ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: bad credentials", ErrUnauthorized)
	}
	return s.issue(user)
}

// Refresh exchanges a valid refresh token for a new pair. The role is
// re-read from the user row, so a role change takes effect here.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*transport.TokenResponse, error) {
	claims, err := s.Tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh token invalid", ErrUnauthorized)
	}
	user, err := s.Repo.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %q not found", ErrUnauthorized, claims.Subject)
		}
		return nil, err
	}
	return s.issue(user)
}

// CurrentUser loads the profile behind a username.
func (s *AuthService) CurrentUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*transport.TokenResponse, error) {
	access, err := s.Tokens.GenerateToken(user.Username, tokens.RoleClaim(user.Role))
	if err != nil {
		return nil, err
	}
	refresh, err := s.Tokens.GenerateRefreshToken(user.Username)
	if err != nil {
		return nil, err
	}
	return &transport.TokenResponse{Token: access, RefreshToken: refresh}, nil
}
