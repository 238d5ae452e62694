package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMaker_RoundTrip(t *testing.T) {
	maker := NewJWTMaker("secret", time.Hour)

	signed, err := maker.Create(42, "shop_owner")
	require.NoError(t, err)

	claims, err := maker.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "shop_owner", claims.Role)
}

func TestJWTMaker_Expired(t *testing.T) {
	maker := NewJWTMaker("secret", time.Hour).(*jwtMaker)
	signed, err := maker.Create(1, "customer")
	require.NoError(t, err)

	maker.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = maker.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTMaker_WrongSecret(t *testing.T) {
	signed, err := NewJWTMaker("one", time.Hour).Create(1, "customer")
	require.NoError(t, err)

	_, err = NewJWTMaker("two", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTMaker_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		UserID: 1,
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTMaker("secret", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
