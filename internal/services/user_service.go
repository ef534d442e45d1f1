// Package services orchestrates the domain operations behind the HTTP
// handlers: accounts, transactions, budgets, and analytics reports.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// UserService handles registration, login, and avatar updates.
type UserService struct {
	store storage.UserStore
	cost  int // bcrypt cost
}

func NewUserService(store storage.UserStore) *UserService {
	return &UserService{store: store, cost: bcrypt.DefaultCost}
}

// Register creates an account. Returns core.ErrEmailTaken when the email
// is already registered.
func (s *UserService) Register(ctx context.Context, name, email, password string) (core.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" {
		return core.User{}, core.ErrEmptyName
	}
	if email == "" {
		return core.User{}, core.ErrEmptyEmail
	}
	if password == "" {
		return core.User{}, core.ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.store.CreateUser(ctx, core.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "User registered", "id", u.ID, "email", u.Email)
	return u, nil
}

// Login verifies credentials. A missing account and a wrong password both
// return core.ErrInvalidCredentials, indistinguishably.
func (s *UserService) Login(ctx context.Context, email, password string) (core.User, error) {
	u, err := s.store.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return core.User{}, core.ErrInvalidCredentials
	}

	return u, nil
}

// SetAvatar stores the avatar image for the user.
func (s *UserService) SetAvatar(ctx context.Context, id, image string) (core.User, error) {
	if strings.TrimSpace(image) == "" {
		return core.User{}, fmt.Errorf("%w: empty avatar image", core.ErrInvalidInput)
	}
	return s.store.SetAvatar(ctx, id, image)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
