// Package auth covers password hashing and bearer-token issue/verification.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	config "github.com/zyzzzz-123/TECHIN510-project/app/configs"
	"github.com/zyzzzz-123/TECHIN510-project/app/core/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

type Service struct {
	users *store.UserStore
	cfg   func() config.AuthConfig
}

func NewService(users *store.UserStore, cfg func() config.AuthConfig) *Service {
	return &Service{users: users, cfg: cfg}
}

func (s *Service) Register(ctx context.Context, email string, password string) (store.User, error) {
	if password == "" {
		return store.User{}, fmt.Errorf("%w: password is required", store.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return store.User{}, err
	}
	return s.users.Create(ctx, email, string(hash))
}

func (s *Service) Authenticate(ctx context.Context, email string, password string) (store.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return store.User{}, ErrInvalidCredentials
		}
		return store.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return store.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) IssueToken(userID int64) (string, error) {
	cfg := s.cfg()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"iat": now.Unix(),
		"exp": now.Add(time.Duration(cfg.TokenTTLMinutes) * time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ParseToken verifies a bearer token and returns the user id it names.
func (s *Service) ParseToken(tokenString string) (int64, error) {
	cfg := s.cfg()
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

// ResolveUser turns a bearer token into the user it belongs to.
func (s *Service) ResolveUser(ctx context.Context, tokenString string) (store.User, error) {
	userID, err := s.ParseToken(tokenString)
	if err != nil {
		return store.User{}, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return store.User{}, ErrInvalidToken
		}
		return store.User{}, err
	}
	return user, nil
}
