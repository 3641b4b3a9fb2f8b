package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/models"
	"github.com/Marcos1701/finquest-backend/pkg/logger"
)

type userStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

type userProfileStore interface {
	GetProfile(ctx context.Context, uid string) (*models.UserProfile, error)
	CreateProfile(ctx context.Context, profile *models.UserProfile) error
	UpdateProfile(ctx context.Context, profile *models.UserProfile) error
}

type userGoalStore interface {
	ListGoals(ctx context.Context, uid string) ([]models.Goal, error)
	CreateGoal(ctx context.Context, uid string, goal *models.Goal) error
}

type userService struct {
	users      userStore
	profiles   userProfileStore
	goals      userGoalStore
	indicators indicatorProvider
	clockNow   func() time.Time
	newID      func() string
}

func NewUserService(users userStore, profiles userProfileStore, goals userGoalStore, indicators indicatorProvider, newID func() string) *userService {
	return &userService{
		users:      users,
		profiles:   profiles,
		goals:      goals,
		indicators: indicators,
		clockNow:   time.Now,
		newID:      newID,
	}
}

// Register creates the user record and a level-1 profile. Registration of an
// already-known uid is a conflict; auth identity comes from the verified
// token, never the body.
func (s *userService) Register(ctx context.Context, uid, email string, req dto.RegisterRequest) (*models.UserProfile, error) {
	if _, err := s.profiles.GetProfile(ctx, uid); err == nil {
		return nil, errs.NewConflictError("user already registered")
	}

	now := s.clockNow()
	user := &models.User{
		UID:       uid,
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	profile := models.NewUserProfile(uid, now)
	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("user registered", "first_name", req.FirstName)
	return profile, nil
}

// GetProfile returns the gamification profile alongside current indicators.
// The first fetch after registration flips the FirstAccess flag.
func (s *userService) GetProfile(ctx context.Context, uid string) (dto.ProfileResponse, error) {
	profile, err := s.profiles.GetProfile(ctx, uid)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	snap, err := s.indicators.Get(ctx, uid)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	// Build the response before flipping the flag so the first fetch still
	// reports FirstAccess=true.
	resp := dto.ProfileResponse{Profile: *profile, Indicators: snap}

	if profile.FirstAccess {
		profile.FirstAccess = false
		profile.UpdatedAt = s.clockNow()
		if err := s.profiles.UpdateProfile(ctx, profile); err != nil {
			logger.FromContext(ctx).Warn("first-access flag update failed", "error", err)
		}
	}

	return resp, nil
}

// UpdateTargets replaces the user's personal indicator targets. Zero-valued
// fields in the request leave the stored target untouched.
func (s *userService) UpdateTargets(ctx context.Context, uid string, req dto.UpdateTargetsRequest) (*models.UserProfile, error) {
	profile, err := s.profiles.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}

	hundred := decimal.NewFromInt(100)
	if req.TargetSavingsRate != nil {
		if req.TargetSavingsRate.IsNegative() || req.TargetSavingsRate.GreaterThan(hundred) {
			return nil, errs.NewValidationError("target savings rate must be between 0 and 100")
		}
		profile.TargetSavingsRate = *req.TargetSavingsRate
	}
	if req.TargetDebtRatio != nil {
		if req.TargetDebtRatio.IsNegative() || req.TargetDebtRatio.GreaterThan(hundred) {
			return nil, errs.NewValidationError("target debt ratio must be between 0 and 100")
		}
		profile.TargetDebtRatio = *req.TargetDebtRatio
	}
	if req.TargetReserveMonths != nil {
		if req.TargetReserveMonths.IsNegative() {
			return nil, errs.NewValidationError("target reserve months cannot be negative")
		}
		profile.TargetReserveMonths = *req.TargetReserveMonths
	}

	profile.UpdatedAt = s.clockNow()
	if err := s.profiles.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// CreateGoal registers a savings goal the engine can target with
// GOAL_PROGRESS missions.
func (s *userService) CreateGoal(ctx context.Context, uid string, req dto.CreateGoalRequest) (*models.Goal, error) {
	if req.Title == "" {
		return nil, errs.NewValidationError("title is required")
	}
	if !req.TargetAmount.IsPositive() {
		return nil, errs.NewValidationError("target amount must be positive")
	}
	if req.Deadline.Before(s.clockNow()) {
		return nil, errs.NewValidationError("deadline must be in the future")
	}

	now := s.clockNow()
	goal := &models.Goal{
		GoalID:       s.newID(),
		UID:          uid,
		Title:        req.Title,
		TargetAmount: req.TargetAmount,
		CategoryIDs:  req.CategoryIDs,
		Deadline:     req.Deadline,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.goals.CreateGoal(ctx, uid, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// ListGoals returns the user's goals, achieved ones included.
func (s *userService) ListGoals(ctx context.Context, uid string) ([]models.Goal, error) {
	return s.goals.ListGoals(ctx, uid)
}
