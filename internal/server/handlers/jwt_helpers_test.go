package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	cfg := JWTConfig{
		Secret:         []byte("test-secret"),
		AccessTokenTTL: time.Hour,
	}

	token, expiresIn, err := GenerateAccessToken(cfg, "device-123", "ward-3-tablet")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), expiresIn)

	claims, err := ValidateAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "device-123", claims.DeviceID)
	assert.Equal(t, "ward-3-tablet", claims.DeviceName)
	assert.Equal(t, "wardsync", claims.Issuer)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	cfg := JWTConfig{
		Secret:         []byte("test-secret"),
		AccessTokenTTL: -time.Minute,
	}

	token, _, err := GenerateAccessToken(cfg, "device-123", "ward-3-tablet")
	require.NoError(t, err)

	_, err = ValidateAccessToken(cfg, token)
	assert.Error(t, err)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	cfg := JWTConfig{
		Secret:         []byte("test-secret"),
		AccessTokenTTL: time.Hour,
	}

	token, _, err := GenerateAccessToken(cfg, "device-123", "ward-3-tablet")
	require.NoError(t, err)

	otherCfg := JWTConfig{Secret: []byte("other-secret"), AccessTokenTTL: time.Hour}
	_, err = ValidateAccessToken(otherCfg, token)
	assert.Error(t, err)
}

func TestValidateAccessToken_RejectsNoneAlgorithm(t *testing.T) {
	cfg := JWTConfig{
		Secret:         []byte("test-secret"),
		AccessTokenTTL: time.Hour,
	}

	claims := DeviceClaims{
		DeviceID:   "device-123",
		DeviceName: "ward-3-tablet",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateAccessToken(cfg, unsigned)
	assert.Error(t, err)
}

func TestGenerateDeviceSecret_Unique(t *testing.T) {
	first, err := GenerateDeviceSecret()
	require.NoError(t, err)
	second, err := GenerateDeviceSecret()
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
