package service

import (
	"context"
	"errors"

	"moovyzoo/internal/model"
	"moovyzoo/internal/pkg"
	"moovyzoo/internal/repository/mysql"
	"moovyzoo/internal/repository/redis"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo     *mysql.UserRepository
	sessions *redis.SessionRepository
	emailSvc *EmailService
}

func NewUserService(emailSvc *EmailService) *UserService {
	return &UserService{
		repo:     mysql.NewUserRepository(),
		sessions: &redis.SessionRepository{},
		emailSvc: emailSvc,
	}
}

// Register requires a verified email code before creating the account.
func (s *UserService) Register(ctx context.Context, username, password, email, code string) error {
	ok, err := s.emailSvc.VerifyCode(ScopeRegister, email, code)
	if err != nil || !ok {
		return pkg.Invalid("email verification failed")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return pkg.Unexpected(err)
	}

	user := &model.User{
		Username:    username,
		Password:    string(hash),
		Email:       email,
		DisplayName: username,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return pkg.Unexpected(err)
	}
	return nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*pkg.Pair, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, errors.New("invalid password")
	}
	pair, err := pkg.GeneratePair(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.AddUserToken(user.ID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *UserService) Logout(userID string) error {
	return s.sessions.DeleteUserToken(userID)
}

func (s *UserService) Refresh(refreshToken string) (*pkg.Pair, error) {
	return pkg.Refresh(refreshToken)
}

// ResetPassword verifies the reset code and replaces the hash.
func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	ok, err := s.emailSvc.VerifyCode(ScopeReset, email, code)
	if err != nil || !ok {
		return pkg.Invalid("email verification failed")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return pkg.ErrNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return pkg.Unexpected(err)
	}
	if err := s.repo.UpdatePassword(ctx, user, string(hash)); err != nil {
		return pkg.Unexpected(err)
	}
	return nil
}

// ChangePassword is the logged-in variant.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return pkg.ErrNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return pkg.Invalid("old password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return pkg.Unexpected(err)
	}
	if err := s.repo.UpdatePassword(ctx, user, string(hash)); err != nil {
		return pkg.Unexpected(err)
	}
	return nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkg.ErrNotFound
	}
	return &model.Profile{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
	}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID, displayName, avatarURL string) error {
	displayName = pkg.SanitizeText(displayName)
	if displayName == "" {
		return pkg.Invalid("display name is empty")
	}
	if err := s.repo.UpdateProfile(ctx, userID, displayName, avatarURL); err != nil {
		return pkg.Unexpected(err)
	}
	return nil
}
