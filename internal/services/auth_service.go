package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/buildmarket/engine/internal/models"
	"github.com/buildmarket/engine/internal/repository"
	appErr "github.com/buildmarket/engine/pkg/errors"
)

type AuthService interface {
	Register(ctx context.Context, input *RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     models.Role
	// Contractor profile fields, required when Role is contractor.
	CompanyName string
	City        string
	State       string
}

type authService struct {
	users       repository.UserRepository
	contractors repository.ContractorRepository
	hmacSecret  []byte
}

func NewAuthService(users repository.UserRepository, contractors repository.ContractorRepository, secret []byte) AuthService {
	return &authService{users: users, contractors: contractors, hmacSecret: secret}
}

var _ AuthService = (*authService)(nil)

func (s *authService) Register(ctx context.Context, input *RegisterInput) (*models.User, error) {
	if input.Role == models.RoleContractor && input.CompanyName == "" {
		return nil, appErr.New(appErr.CodeInvalid, "contractor registration requires a company name")
	}

	ph, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "hash password failed")
	}

	user := &models.User{
		Email:        input.Email,
		PasswordHash: string(ph),
		Name:         input.Name,
		Role:         input.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeAlreadyExists, "email already registered")
	}

	if input.Role == models.RoleContractor {
		c := &models.Contractor{
			UserID:      user.ID,
			CompanyName: input.CompanyName,
			City:        input.City,
			State:       input.State,
		}
		if err := s.contractors.Create(ctx, c); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	if err := s.users.GetByEmail(ctx, email, &user); err != nil {
		return "", nil, appErr.New(appErr.CodeUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, appErr.New(appErr.CodeUnauthorized, "invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(s.hmacSecret)
	if err != nil {
		return "", nil, appErr.Wrap(err, appErr.CodeInternal, "sign token failed")
	}
	return tokenString, &user, nil
}
