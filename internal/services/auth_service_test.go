package services

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/buildmarket/engine/internal/models"
	appErr "github.com/buildmarket/engine/pkg/errors"
)

var testSecret = []byte("test-secret-at-least-16-chars")

func TestAuthService_Register(t *testing.T) {
	t.Run("homeowner registration", func(t *testing.T) {
		users := &mockUserRepository{}
		contractors := &mockContractorRepository{}
		svc := NewAuthService(users, contractors, testSecret)

		users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == "owner@example.com" && u.Role == models.RoleHomeowner && u.PasswordHash != "hunter22"
		})).Return(nil).Once()

		u, err := svc.Register(context.Background(), &RegisterInput{
			Email:    "owner@example.com",
			Password: "hunter22",
			Name:     "Pat Owner",
			Role:     models.RoleHomeowner,
		})
		require.NoError(t, err)
		require.Equal(t, models.RoleHomeowner, u.Role)
		contractors.AssertNotCalled(t, "Create")
	})

	t.Run("contractor registration creates profile", func(t *testing.T) {
		users := &mockUserRepository{}
		contractors := &mockContractorRepository{}
		svc := NewAuthService(users, contractors, testSecret)

		users.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		contractors.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Contractor) bool {
			return c.CompanyName == "Build Co" && c.City == "Austin"
		})).Return(nil).Once()

		_, err := svc.Register(context.Background(), &RegisterInput{
			Email:       "gc@example.com",
			Password:    "hunter22",
			Name:        "Sam Builder",
			Role:        models.RoleContractor,
			CompanyName: "Build Co",
			City:        "Austin",
			State:       "TX",
		})
		require.NoError(t, err)
		mock.AssertExpectationsForObjects(t, users, contractors)
	})

	t.Run("contractor registration requires company name", func(t *testing.T) {
		users := &mockUserRepository{}
		svc := NewAuthService(users, &mockContractorRepository{}, testSecret)

		_, err := svc.Register(context.Background(), &RegisterInput{
			Email:    "gc@example.com",
			Password: "hunter22",
			Role:     models.RoleContractor,
		})
		require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
		users.AssertNotCalled(t, "Create")
	})
}

func TestAuthService_Login(t *testing.T) {
	userID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)

	account := &models.User{
		ID:           userID,
		Email:        "owner@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleHomeowner,
	}

	t.Run("issues token carrying subject and role", func(t *testing.T) {
		users := &mockUserRepository{}
		svc := NewAuthService(users, &mockContractorRepository{}, testSecret)

		users.On("GetByEmail", mock.Anything, "owner@example.com", &models.User{}).Return(nil, account).Once()

		tokenString, u, err := svc.Login(context.Background(), "owner@example.com", "hunter22")
		require.NoError(t, err)
		require.Equal(t, userID, u.ID)

		parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) { return testSecret, nil })
		require.NoError(t, err)
		claims := parsed.Claims.(jwt.MapClaims)
		require.Equal(t, userID.String(), claims["sub"])
		require.Equal(t, string(models.RoleHomeowner), claims["role"])
	})

	t.Run("wrong password", func(t *testing.T) {
		users := &mockUserRepository{}
		svc := NewAuthService(users, &mockContractorRepository{}, testSecret)

		users.On("GetByEmail", mock.Anything, "owner@example.com", &models.User{}).Return(nil, account).Once()

		_, _, err := svc.Login(context.Background(), "owner@example.com", "wrong")
		require.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))
	})

	t.Run("unknown email reports the same error", func(t *testing.T) {
		users := &mockUserRepository{}
		svc := NewAuthService(users, &mockContractorRepository{}, testSecret)

		users.On("GetByEmail", mock.Anything, "nobody@example.com", &models.User{}).
			Return(appErr.New(appErr.CodeNotFound, "user not found"), nil).Once()

		_, _, err := svc.Login(context.Background(), "nobody@example.com", "hunter22")
		require.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))
	})
}
