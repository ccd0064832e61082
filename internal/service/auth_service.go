package service

import (
	"context"
	"errors"
	"time"

	"rateguard/internal/dto"
	"rateguard/internal/models"
	"rateguard/internal/repository"
	"rateguard/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
)

type AuthService struct {
	userRepo   *repository.UserRepository
	jwtManager *auth.JWTManager
	logger     *zap.Logger
}

func NewAuthService(userRepo *repository.UserRepository, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	existingUser, _ := s.userRepo.GetByEmail(ctx, req.Email)
	if existingUser != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	// Profile is created on first sign-in and enriched during onboarding.
	now := time.Now()
	user := &models.User{
		ID:          uuid.New(),
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    hashedPassword,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !auth.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	claims, err := s.jwtManager.ValidateToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return s.buildAuthResponse(user)
}

func (s *AuthService) buildAuthResponse(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateToken(user.ID.String(), user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID.String())
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtManager.GetTokenDuration().Seconds()),
		User:         buildUserResponse(user),
	}, nil
}

func buildUserResponse(user *models.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:             user.ID.String(),
		DisplayName:    user.DisplayName,
		Email:          user.Email,
		OnboardingSeen: user.OnboardingSeen,
	}
	if user.OrganizationID != nil {
		resp.OrganizationID = user.OrganizationID.String()
	}
	return resp
}

// GetProfile returns the full profile for the profile endpoint.
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	resp := &dto.ProfileResponse{
		ID:             user.ID.String(),
		DisplayName:    user.DisplayName,
		Email:          user.Email,
		Country:        user.Country,
		TaxID:          user.TaxID,
		OnboardingSeen: user.OnboardingSeen,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
	}
	if user.OrganizationID != nil {
		resp.OrganizationID = user.OrganizationID.String()
	}
	return resp, nil
}

// CompleteOnboarding records the compliance fields and marks onboarding seen.
func (s *AuthService) CompleteOnboarding(ctx context.Context, userID uuid.UUID, req *dto.OnboardingRequest) (*dto.ProfileResponse, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, ErrUserNotFound
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, req.DisplayName, req.Country, req.TaxID, true); err != nil {
		return nil, err
	}

	return s.GetProfile(ctx, userID)
}
