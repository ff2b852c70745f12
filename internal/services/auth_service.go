package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"shelfwise/internal/models"
	"shelfwise/internal/repositories"
)

// Claims are the JWT claims issued on login.
type Claims struct {
	UserID uuid.UUID       `json:"user_id"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// AuthService owns signup and login. Tokens are HS256 JWTs carrying the user
// id and role; everything else about sessions lives in the handlers.
type AuthService interface {
	Signup(name, email, password string, role models.UserRole) (*models.User, error)
	Login(email, password string) (*models.User, string, error)
}

type authService struct {
	userRepo repositories.UserRepository
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(userRepo repositories.UserRepository, secret string, tokenTTL time.Duration) AuthService {
	return &authService{userRepo: userRepo, secret: secret, tokenTTL: tokenTTL}
}

func (s *authService) Signup(name, email, password string, role models.UserRole) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	if role == "" {
		role = models.UserRoleMember
	}
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.userRepo.Create(nil, user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		log.Printf("[ERROR] Signup: failed to create user %s: %v", email, err)
		return nil, err
	}
	log.Printf("[INFO] Signup: user %s registered (id=%s, role=%s)", email, user.ID, user.Role)
	return user, nil
}

func (s *authService) Login(email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return nil, "", fmt.Errorf("signing token: %w", err)
	}
	return user, token, nil
}

// ParseToken validates an HS256 JWT and returns its claims.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
