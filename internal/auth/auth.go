package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin = "admin"

	DefaultTokenTTL = 8 * time.Hour
	issuer          = "quiz-grading-service"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Claims carried by an admin access token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service authenticates the single configured administrator and signs HS256 tokens.
type Service struct {
	secret       []byte
	adminUser    string
	passwordHash []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewService(secret, adminUser, passwordHash string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{
		secret:       []byte(secret),
		adminUser:    adminUser,
		passwordHash: []byte(passwordHash),
		ttl:          ttl,
		now:          time.Now,
	}
}

// Login checks the credentials against the configured admin and returns a signed token.
func (s *Service) Login(username, password string) (string, error) {
	if s.adminUser == "" || len(s.passwordHash) == 0 || username != s.adminUser {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.IssueToken(username, RoleAdmin)
}

func (s *Service) IssueToken(subject, role string) (string, error) {
	now := s.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the signature, algorithm and expiry of tokenStr.
func (s *Service) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash suitable for the admin_password_hash setting.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
