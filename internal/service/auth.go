package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qalicha-dev28/boutique-pos/internal/apperr"
	"github.com/qalicha-dev28/boutique-pos/internal/auth"
	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/internal/repository"
)

type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

type AuthService interface {
	// Login verifies credentials and returns a signed bearer token with
	// the authenticated user.
	Login(ctx context.Context, email, password string) (string, model.User, error)
	Register(ctx context.Context, params RegisterParams) (string, model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, params repository.UpdateUserParams) (model.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	tokenMaker *auth.TokenMaker
}

func NewAuthService(userRepo repository.UserRepository, tokenMaker *auth.TokenMaker) AuthService {
	return &authService{
		userRepo:   userRepo,
		tokenMaker: tokenMaker,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, model.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", model.User{}, apperr.ErrInvalidCredentials.WrapParent(err)
		}
		return "", model.User{}, fmt.Errorf("get user by email: %w", err)
	}

	if !user.IsActive {
		return "", model.User{}, apperr.ErrAccountDeactivated
	}

	if !auth.CheckPassword(password, user.Password) {
		return "", model.User{}, apperr.ErrInvalidCredentials
	}

	token, err := s.tokenMaker.Generate(user)
	if err != nil {
		return "", model.User{}, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}

func (s *authService) Register(ctx context.Context, params RegisterParams) (string, model.User, error) {
	if err := params.Role.Validate(); err != nil {
		return "", model.User{}, apperr.ValidationErr.WithMsg("invalid role").WrapParent(err)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return "", model.User{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", model.User{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:        id,
		Name:      params.Name,
		Email:     params.Email,
		Password:  hash,
		Role:      params.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return "", model.User{}, apperr.ErrEmailTaken.WrapParent(err)
		}
		return "", model.User{}, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokenMaker.Generate(user)
	if err != nil {
		return "", model.User{}, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}

func (s *authService) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, apperr.ErrUserNotFound.WrapParent(err)
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

func (s *authService) UpdateUser(ctx context.Context, id uuid.UUID, params repository.UpdateUserParams) (model.User, error) {
	if params.Role != nil {
		if err := params.Role.Validate(); err != nil {
			return model.User{}, apperr.ValidationErr.WithMsg("invalid role").WrapParent(err)
		}
	}

	user, err := s.userRepo.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, apperr.ErrUserNotFound.WrapParent(err)
		}
		return model.User{}, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}
