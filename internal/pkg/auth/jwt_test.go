package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "internhub.test",
	})
}

func testUser(role models.Role) *models.User {
	return &models.User{ID: 42, Email: "s@example.com", Role: role, IsActive: true}
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService()

	token, expiresIn, err := svc.GenerateToken(testUser(models.RoleStudent))
	require.NoError(t, err)
	assert.Equal(t, 3600, expiresIn)

	claims, err := svc.ValidateAndExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService()
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }
	token, _, err := svc.GenerateToken(testUser(models.RoleAdmin))
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))
}

func TestValidateToken_Tampered(t *testing.T) {
	svc := newTestService()
	token, _, err := svc.GenerateToken(testUser(models.RoleStudent))
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "internhub.test"})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	svc := newTestService()
	claims := &Claims{UserID: 1, Email: "a@b.c", Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "internhub.test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	token, _, err := NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "evil"}).
		GenerateToken(testUser(models.RoleStudent))
	require.NoError(t, err)

	_, err = newTestService().ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthorize(t *testing.T) {
	svc := newTestService()
	token, _, err := svc.GenerateToken(testUser(models.RoleMentor))
	require.NoError(t, err)

	_, err = svc.Authorize(token)
	assert.NoError(t, err)

	_, err = svc.Authorize(token, models.RoleAdmin, models.RoleMentor)
	assert.NoError(t, err)

	_, err = svc.Authorize(token, models.RoleStudent)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Authorize("", models.RoleStudent)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	tok, err = ExtractBearerToken("abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	tok, err = ExtractBearerToken("bearer   abc.def ")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	for _, header := range []string{"Bearer ", "Bearer", "  bearer  ", "Bearer a b"} {
		_, err = ExtractBearerToken(header)
		assert.ErrorIs(t, err, ErrInvalidFormat, "header %q", header)
	}
}
