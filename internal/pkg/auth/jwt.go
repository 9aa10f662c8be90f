package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

// JWT errors
var (
	ErrInvalidToken  = apperrors.ErrTokenInvalid
	ErrExpiredToken  = apperrors.ErrTokenExpired
	ErrInvalidFormat = fmt.Errorf("%w: malformed authorization header", apperrors.ErrTokenInvalid)
)

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey      string
	AccessTokenExp time.Duration
	TokenIssuer    string
}

// JWTService signs and verifies stateless access tokens.
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{
		config: config,
		now:    time.Now,
	}
}

// Claims defines JWT token content
type Claims struct {
	UserID int64       `json:"userId"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed access token for user and returns it with its lifetime in seconds.
func (s *JWTService) GenerateToken(user *models.User) (string, int, error) {
	now := s.now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create access token: %w", err)
	}

	return signed, int(s.config.AccessTokenExp.Seconds()), nil
}

// ValidateToken verifies signature, algorithm, issuer and time claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.TokenIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.TokenIssuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractBearerToken extracts the token from the Authorization header.
// A bare token without the scheme is accepted; a scheme without a token is not.
func ExtractBearerToken(authHeader string) (string, error) {
	token := strings.TrimSpace(authHeader)
	if scheme, rest, ok := strings.Cut(token, " "); ok && strings.EqualFold(scheme, "Bearer") {
		token = strings.TrimSpace(rest)
	} else if strings.EqualFold(token, "Bearer") {
		token = ""
	}
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrInvalidFormat
	}
	return token, nil
}

// ValidateAndExtractClaims validates a token and checks the claims we rely on downstream.
func (s *JWTService) ValidateAndExtractClaims(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.UserID <= 0 || claims.Email == "" {
		return nil, ErrInvalidToken
	}
	if _, err := models.ParseRole(string(claims.Role)); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Authorize validates the token and requires one of roles. With no roles any valid token passes.
func (s *JWTService) Authorize(tokenString string, roles ...models.Role) (*Claims, error) {
	claims, err := s.ValidateAndExtractClaims(tokenString)
	if err != nil {
		return nil, err
	}
	if !HasRole(claims.Role, roles...) {
		return nil, fmt.Errorf("%w: role %s", apperrors.ErrUnauthorized, claims.Role)
	}
	return claims, nil
}

// HasRole reports whether role is among allowed. An empty allowed list admits every role.
func HasRole(role models.Role, allowed ...models.Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
