package service

import (
	"FileVault/internal/model"
	"FileVault/internal/repo"
	"FileVault/internal/storage"
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLen — минимальная длина пароля.
const MinPasswordLen = 5

// UserService — регистрация, вход и смена пароля.
type UserService struct {
	repo repo.UserRepository
	logs *LogService
}

func NewUserService(r repo.UserRepository, logs *LogService) *UserService {
	return &UserService{repo: r, logs: logs}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// findUser возвращает (nil, nil), если пользователя нет.
func (s *UserService) findUser(ctx context.Context, username string) (*model.User, error) {
	u, err := s.repo.GetUserByLogin(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Register создаёт пользователя с bcrypt-хешем пароля.
func (s *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	if !storage.ValidOwner(username) {
		return nil, ErrInvalidUsername
	}
	if len(password) < MinPasswordLen {
		return nil, ErrPasswordTooShort
	}

	existing, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrLoginTaken
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.CreateUser(ctx, &model.User{Username: username, Password: hash})
	if err != nil {
		// гонка двух регистраций: второй упирается в первичный ключ
		if again, findErr := s.findUser(ctx, username); findErr == nil && again != nil {
			return nil, ErrLoginTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login проверяет пару логин/пароль. Любое несовпадение — ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// ResetPassword — сброс пароля без входа, по одному только имени пользователя.
func (s *UserService) ResetPassword(ctx context.Context, username, newPassword string) error {
	u, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	if len(newPassword) < MinPasswordLen {
		return ErrPasswordTooShort
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, username, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// ChangePassword меняет пароль вошедшего пользователя и пишет это в журнал.
func (s *UserService) ChangePassword(ctx context.Context, username, oldPassword, newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordMismatch
	}

	u, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)) != nil {
		return ErrOldPasswordIncorrect
	}
	if len(newPassword) < MinPasswordLen {
		return ErrPasswordTooShort
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, username, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return s.logs.Append(ctx, username, model.ActionPasswordChanged, model.NoFile)
}
