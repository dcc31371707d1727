package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"mockexam-service/internal/auth"
	"mockexam-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)

type UserService struct {
	Users     UserStore
	JWTSecret string
	TokenTTL  time.Duration
}

func NewUserService(users UserStore, jwtSecret string) *UserService {
	return &UserService{Users: users, JWTSecret: jwtSecret, TokenTTL: 30 * 24 * time.Hour}
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type Credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !emailPattern.MatchString(email) {
		return nil, "", fmt.Errorf("%w: invalid email address", models.ErrValidation)
	}
	if in.Phone != "" && !regexp.MustCompile(`^[0-9]{10}$`).MatchString(in.Phone) {
		return nil, "", fmt.Errorf("%w: phone must be 10 digits", models.ErrValidation)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hash,
		Phone:    in.Phone,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken(user.ID, s.JWTSecret, s.TokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Login(ctx context.Context, creds Credentials) (*models.User, string, error) {
	user, err := s.Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(creds.Email)))
	if err != nil {
		return nil, "", models.ErrInvalidCredentials
	}
	if !auth.CheckPassword(user.Password, creds.Password) {
		return nil, "", models.ErrInvalidCredentials
	}
	token, err := auth.GenerateToken(user.ID, s.JWTSecret, s.TokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.Users.FindByID(ctx, userID)
}

// ActivatePremium flips the entitlement on for the given duration, measured
// from now. Called by the payment settlement path.
func (s *UserService) ActivatePremium(ctx context.Context, userID string, duration time.Duration) error {
	expiresAt := time.Now().Add(duration)
	return s.Users.Update(ctx, userID, bson.M{
		"is_premium":         true,
		"premium_expires_at": expiresAt,
	})
}

// DemoteExpiredPremium is used by the premium gate when it observes a lapsed
// subscription during a request.
func (s *UserService) DemoteExpiredPremium(ctx context.Context, userID string) error {
	return s.Users.Update(ctx, userID, bson.M{"is_premium": false})
}

func (s *UserService) ListAll(ctx context.Context) ([]models.User, error) {
	return s.Users.FindAll(ctx)
}
