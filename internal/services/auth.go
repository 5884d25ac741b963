package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService issues and verifies the HS256 bearer tokens the write gate
// checks. Credentials are a single configured username plus bcrypt hash;
// there is no user table behind this.
type AuthService struct {
	secret       []byte
	username     string
	passwordHash string
	tokenTTL     time.Duration
}

func NewAuthService(secret, username, passwordHash string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		secret:       []byte(secret),
		username:     username,
		passwordHash: passwordHash,
		tokenTTL:     tokenTTL,
	}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthService) Login(username, password string) (string, error) {
	if username != s.username || !VerifyPassword(s.passwordHash, password) {
		return "", ErrInvalidCredentials
	}
	return s.GenerateToken(username)
}

func (s *AuthService) GenerateToken(subject string) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *AuthService) VerifyToken(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenExpired
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}
