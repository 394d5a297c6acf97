package services

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"liminmarket/internal/models"
	"liminmarket/internal/repositories"
	"liminmarket/utils"
)

const (
	accessTokenTTL  = 20 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

// SigningKey is shared with the JWT middleware. JWT_SIGNING_KEY overrides the
// development default.
func SigningKey() []byte {
	if key := os.Getenv("JWT_SIGNING_KEY"); key != "" {
		return []byte(key)
	}
	return []byte("liminmarket-dev-signing-key")
}

type UserService struct {
	UserRepo     *repositories.UserRepository
	TokenManager *utils.Manager
}

// IssueTokens signs an access token and opens a refresh session for the user.
func (s *UserService) IssueTokens(ctx context.Context, user models.User) (models.Tokens, error) {
	accessToken, err := s.TokenManager.NewJWT(user.ID, user.Role, accessTokenTTL)
	if err != nil {
		return models.Tokens{}, err
	}

	refreshToken, err := s.TokenManager.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}
	if err := s.CreateSession(ctx, user.ID, user.Role, refreshToken); err != nil {
		return models.Tokens{}, err
	}

	return models.Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (s *UserService) SignUp(ctx context.Context, user models.User) (models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	user.Password = string(hashed)
	if user.Role == "" {
		user.Role = "client"
	}
	user.CreatedAt = time.Now()

	created, err := s.UserRepo.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	created.Password = ""
	return created, nil
}

func (s *UserService) SignIn(ctx context.Context, phone, password string) (models.User, error) {
	user, err := s.UserRepo.GetUserByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return models.User{}, models.ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, models.ErrInvalidCredentials
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) CreateSession(ctx context.Context, userID int, role, refreshToken string) error {
	return s.UserRepo.CreateSession(ctx, models.Session{
		UserID:       userID,
		Role:         role,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(refreshTokenTTL),
		CreatedAt:    time.Now(),
	})
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (models.User, error) {
	user, err := s.UserRepo.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) SaveFCMToken(ctx context.Context, userID int, token string) error {
	return s.UserRepo.SaveFCMToken(ctx, userID, token)
}
