package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/roster/internal/app/models"
	"github.com/yigit/roster/internal/pkg/apperrors"
)

func newTestService(now *time.Time) *JWTService {
	svc := NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "roster.test",
	})
	svc.now = func() time.Time { return *now }
	return svc
}

func TestGenerateToken_ValidForOneHour(t *testing.T) {
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(&now)
	account := &models.Account{ID: "acc-1", Username: "admin"}

	token, expiresIn, err := svc.GenerateToken(account)
	require.NoError(t, err)
	assert.EqualValues(t, 3600, expiresIn)

	now = now.Add(59 * time.Minute)
	claims, err := svc.Authorize("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.AccountID)
	assert.Equal(t, "admin", claims.Username)

	now = now.Add(2 * time.Minute)
	_, err = svc.Authorize("Bearer " + token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateToken_Tampered(t *testing.T) {
	now := time.Now()
	svc := newTestService(&now)
	token, _, err := svc.GenerateToken(&models.Account{ID: "acc-1", Username: "admin"})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	t.Run("signature", func(t *testing.T) {
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		_, err := svc.ValidateToken(parts[0] + "." + parts[1] + "." + string(sig))
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("payload", func(t *testing.T) {
		other, _, err := svc.GenerateToken(&models.Account{ID: "acc-2", Username: "other"})
		require.NoError(t, err)
		otherParts := strings.Split(other, ".")
		_, err = svc.ValidateToken(parts[0] + "." + otherParts[1] + "." + parts[2])
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("foreign secret", func(t *testing.T) {
		foreign := NewJWTService(JWTConfig{SecretKey: "another", AccessTokenExp: time.Hour})
		forged, _, err := foreign.GenerateToken(&models.Account{ID: "acc-1"})
		require.NoError(t, err)
		_, err = svc.ValidateToken(forged)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{AccountID: "acc-1"})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateToken(raw)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{header: "", wantErr: apperrors.ErrTokenMissing},
		{header: "   ", wantErr: apperrors.ErrTokenMissing},
		{header: "Bearer", wantErr: apperrors.ErrTokenMalformed},
		{header: "abc.def.ghi", wantErr: apperrors.ErrTokenMalformed},
		{header: "Basic abc", wantErr: apperrors.ErrTokenMalformed},
		{header: "Bearer a b", wantErr: apperrors.ErrTokenMalformed},
		{header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{header: "bearer abc", want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
