package service

import (
	"context"
	"strings"

	"snapfeed/internal/auth"
	"snapfeed/internal/models"
	"snapfeed/internal/repository"
	"snapfeed/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the hashing strength the frontend's session
// lifetime was tuned against. Do not lower without rehashing existing
// credentials.
const bcryptCost = 12

type SignupInput struct {
	Email    string
	Name     string
	Password string
}

type LoginResult struct {
	Token  string
	UserID uint
}

// AuthService handles account creation, credential checks, and profile
// status updates.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenService
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenService) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

// Signup validates all fields before touching storage so the caller
// receives every problem at once, then creates the account.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)

	var fields []models.FieldError
	if err := validation.ValidateEmail(email); err != nil {
		fields = append(fields, models.FieldError{Field: "email", Message: err.Error()})
	}
	if err := validation.ValidateName(name); err != nil {
		fields = append(fields, models.FieldError{Field: "name", Message: err.Error()})
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		fields = append(fields, models.FieldError{Field: "password", Message: err.Error()})
	}
	if len(fields) > 0 {
		return nil, models.NewValidationError("Validation failed", fields...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:    email,
		Name:     name,
		Password: string(hash),
		Status:   models.DefaultStatus,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a signed token. A missing
// account and a bad password produce the same error so the response
// does not reveal which emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthenticatedError("Wrong email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthenticatedError("Wrong email or password")
	}

	token, err := s.tokens.Issue(auth.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &LoginResult{Token: token, UserID: user.ID}, nil
}

// GetProfile loads a user together with their recent posts.
func (s *AuthService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByIDWithPosts(ctx, id, 10)
}

// UpdateStatus replaces the caller's status line.
func (s *AuthService) UpdateStatus(ctx context.Context, userID uint, status string) (*models.User, error) {
	status = strings.TrimSpace(status)
	if err := validation.ValidateStatus(status); err != nil {
		return nil, models.NewValidationError("Validation failed", models.FieldError{Field: "status", Message: err.Error()})
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Status = status
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
