package service

import (
	"context"
	"time"

	"finpulse/internal/dto"
	"finpulse/internal/models"
	"finpulse/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProfileService exposes the forecast-related user settings: risk tolerance
// and the manual buffer overrides.
type ProfileService struct {
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

func NewProfileService(userRepo *repository.UserRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return toProfileResponse(user), nil
}

func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if req.RiskTolerance != "" {
		switch models.RiskTolerance(req.RiskTolerance) {
		case models.RiskToleranceLow, models.RiskToleranceMedium, models.RiskToleranceHigh:
			user.RiskTolerance = models.RiskTolerance(req.RiskTolerance)
		}
	}
	if req.CustomBufferTarget != nil {
		user.CustomBufferTarget = req.CustomBufferTarget
	}
	if req.CustomCurrentBuffer != nil {
		user.CustomCurrentBuffer = req.CustomCurrentBuffer
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return toProfileResponse(user), nil
}

func toProfileResponse(user *models.User) *dto.ProfileResponse {
	return &dto.ProfileResponse{
		ID:                  user.ID.String(),
		Username:            user.Username,
		Email:               user.Email,
		RiskTolerance:       string(user.RiskTolerance),
		CustomBufferTarget:  user.CustomBufferTarget,
		CustomCurrentBuffer: user.CustomCurrentBuffer,
	}
}
