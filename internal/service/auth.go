package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"workspace-server/internal/cache"
	"workspace-server/internal/model"
)

var (
	ErrInvalidAdminToken  = errors.New("invalid admin token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
)

var loginRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// UserStore хранилище пользователей
type UserStore interface {
	Create(ctx context.Context, id uuid.UUID, login, email, hashedPassword string) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	GetByToken(ctx context.Context, token string) (*model.User, error)
	UpdateToken(ctx context.Context, userID uuid.UUID, token string, expiry time.Time) error
	ClearToken(ctx context.Context, token string) error
}

type AuthService struct {
	users       UserStore
	adminToken  string
	jwtSecret   []byte
	tokenExpiry time.Duration
	tokenCache  *cache.MemoryCache
}

// Claims данные, зашитые в JWT токен
type Claims struct {
	UserID string `json:"user_id"`
	Login  string `json:"login"`
	jwt.RegisteredClaims
}

func NewAuthService(users UserStore, adminToken string, jwtSecret []byte, tokenCache *cache.MemoryCache) *AuthService {
	return &AuthService{
		users:       users,
		adminToken:  adminToken,
		jwtSecret:   jwtSecret,
		tokenExpiry: 24 * time.Hour,
		tokenCache:  tokenCache,
	}
}

func (s *AuthService) Register(ctx context.Context, adminToken, login, email, password string) (*model.User, error) {
	if adminToken != s.adminToken {
		return nil, ErrInvalidAdminToken
	}

	if err := validateLogin(login); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:        uuid.New(),
		Login:     login,
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := s.users.Create(ctx, user.ID, login, email, string(hashedPassword)); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Authenticate(ctx context.Context, login, password string) (string, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.generateJWTToken(user.ID, user.Login)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	expiry := time.Now().Add(s.tokenExpiry)
	if err := s.users.UpdateToken(ctx, user.ID, token, expiry); err != nil {
		return "", fmt.Errorf("failed to update user token: %w", err)
	}

	return token, nil
}

func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*model.User, error) {
	// Сначала кеш, потом база
	cacheKey := "token_" + tokenString
	if cached, found := s.tokenCache.Get(cacheKey); found {
		if user, ok := cached.(*model.User); ok {
			return user, nil
		}
	}

	if _, err := s.parseJWTToken(tokenString); err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByToken(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	if time.Now().After(user.TokenExpiry) {
		return nil, ErrTokenExpired
	}

	s.tokenCache.Set(cacheKey, user, time.Until(user.TokenExpiry))
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	s.tokenCache.Delete("token_" + tokenString)
	return s.users.ClearToken(ctx, tokenString)
}

func (s *AuthService) generateJWTToken(userID uuid.UUID, login string) (string, error) {
	claims := &Claims{
		UserID: userID.String(),
		Login:  login,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "workspace-server",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) parseJWTToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

func validateLogin(login string) error {
	if len(login) < 8 {
		return errors.New("login must be at least 8 characters long")
	}
	if !loginRe.MatchString(login) {
		return errors.New("login must contain only latin letters and digits")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}

	var (
		hasUpper   bool
		hasLower   bool
		hasDigit   bool
		hasSpecial bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		case !unicode.IsLetter(char) && !unicode.IsDigit(char):
			hasSpecial = true
		}
	}

	if !hasUpper || !hasLower {
		return errors.New("password must contain at least 2 letters in different cases (upper and lower)")
	}
	if !hasDigit {
		return errors.New("password must contain at least 1 digit")
	}
	if !hasSpecial {
		return errors.New("password must contain at least 1 special character")
	}
	return nil
}
