package service

import (
	"context"
	"errors"

	"scentstore/internal/auth"
	"scentstore/internal/models"
	"scentstore/internal/store"
	"scentstore/internal/util"

	"go.uber.org/zap"
)

// Account errors
var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserService handles accounts, sessions and profiles
type UserService struct {
	store         *store.Store
	auth          *auth.Manager
	notifications *NotificationService
	logger        *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(st *store.Store, authMgr *auth.Manager, notifications *NotificationService) *UserService {
	return &UserService{
		store:         st,
		auth:          authMgr,
		notifications: notifications,
		logger:        util.GetLogger(),
	}
}

// RegisterRequest creates a customer account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest opens a session
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the session token
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a customer account
func (us *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.Register")
	defer span.End()

	existing, err := us.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := us.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleCustomer,
	}
	if err := us.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	us.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues a token. Users with an
// incomplete shipping profile get a one-time reminder notification.
func (us *UserService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	ctx, span := util.StartSpan(ctx, "UserService.Login")
	defer span.End()

	user, err := us.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !us.auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := us.auth.IssueToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	if !user.ProfileComplete() {
		_, created, err := us.notifications.Emit(ctx, user.ID, nil,
			models.NotificationProfileReminder,
			"Complete your profile so we can ship your orders.")
		if err != nil {
			us.logger.Error("Failed to emit profile reminder", zap.Int64("user_id", user.ID), zap.Error(err))
		} else if created {
			us.logger.Info("Profile reminder emitted", zap.Int64("user_id", user.ID))
		}
	}

	return &LoginResponse{Token: token, User: user}, nil
}

// GetProfile returns the user's account
func (us *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return us.store.GetUserByID(ctx, userID)
}

// UpdateProfileRequest edits the shipping profile
type UpdateProfileRequest struct {
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Address   string `json:"address" binding:"required"`
	AvatarURL string `json:"avatar_url"`
}

// UpdateProfile edits the user's shipping profile fields
func (us *UserService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.UpdateProfile")
	defer span.End()

	user, err := us.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = req.Name
	user.Phone = req.Phone
	user.Address = req.Address
	user.AvatarURL = req.AvatarURL

	if err := us.store.UpdateUserProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
