package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"shelfwise/internal/models"
)

const testSecret = "test-secret"

func TestSignup(t *testing.T) {
	var created *models.User
	users := &mockUserRepo{
		createFn: func(u *models.User) error {
			u.ID = uuid.New()
			created = u
			return nil
		},
	}
	svc := NewAuthService(users, testSecret, 4*time.Hour)

	user, err := svc.Signup("Ada", "ada@example.com", "hunter2hunter2", "")
	require.NoError(t, err)

	assert.Equal(t, models.UserRoleMember, user.Role)
	assert.NotEqual(t, "hunter2hunter2", created.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("hunter2hunter2")))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	users := &mockUserRepo{
		createFn: func(*models.User) error {
			return errors.New(`duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`)
		},
	}
	svc := NewAuthService(users, testSecret, 4*time.Hour)

	_, err := svc.Signup("Ada", "ada@example.com", "hunter2hunter2", "")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)

	stored := &models.User{
		ID:           uuid.New(),
		Email:        "ada@example.com",
		PasswordHash: string(hash),
		Role:         models.UserRoleAdmin,
	}
	users := &mockUserRepo{
		getByEmailFn: func(email string) (*models.User, error) {
			if email != stored.Email {
				return nil, gorm.ErrRecordNotFound
			}
			return stored, nil
		},
	}
	svc := NewAuthService(users, testSecret, 4*time.Hour)

	t.Run("success issues parseable token", func(t *testing.T) {
		user, token, err := svc.Login("ada@example.com", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, stored.ID, user.ID)

		claims, err := ParseToken(testSecret, token)
		require.NoError(t, err)
		assert.Equal(t, stored.ID, claims.UserID)
		assert.Equal(t, models.UserRoleAdmin, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login("ada@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login("nobody@example.com", "correct-horse")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("token rejects wrong secret", func(t *testing.T) {
		_, token, err := svc.Login("ada@example.com", "correct-horse")
		require.NoError(t, err)

		_, err = ParseToken("other-secret", token)
		require.Error(t, err)
	})
}
