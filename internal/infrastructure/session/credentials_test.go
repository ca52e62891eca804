package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sangkips/velo-register/pkg/apperror"
	"github.com/sangkips/velo-register/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialStore_PutAndToken(t *testing.T) {
	jwtManager := utils.NewJWTManager("secret", 0)
	store := NewCredentialStore(jwtManager)

	raw, err := jwtManager.GenerateAccessToken(7, "anne", time.Hour)
	require.NoError(t, err)

	claims, err := store.Put(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)

	tok, err := store.Token(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, raw, tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())
}

func TestCredentialStore_MissingIsAuthExpired(t *testing.T) {
	store := NewCredentialStore(utils.NewJWTManager("secret", 0))

	_, err := store.Token(context.Background(), 7)
	assert.True(t, errors.Is(err, apperror.ErrAuthExpired))

	_, ok := store.AnyValid()
	assert.False(t, ok)
}

func TestCredentialStore_ExpiresWhileStored(t *testing.T) {
	jwtManager := utils.NewJWTManager("secret", 0)
	store := NewCredentialStore(jwtManager)
	raw, err := jwtManager.GenerateAccessToken(7, "anne", time.Minute)
	require.NoError(t, err)
	_, err = store.Put(raw)
	require.NoError(t, err)

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err = store.Token(context.Background(), 7)
	assert.True(t, errors.Is(err, apperror.ErrAuthExpired))
}

func TestCredentialStore_RejectsBadTokens(t *testing.T) {
	jwtManager := utils.NewJWTManager("secret", 0)
	store := NewCredentialStore(jwtManager)

	expired, err := jwtManager.GenerateAccessToken(7, "anne", -time.Minute)
	require.NoError(t, err)
	_, err = store.Put(expired)
	assert.True(t, errors.Is(err, apperror.ErrAuthExpired))

	_, err = store.Put("garbage")
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
}

func TestCredentialStore_ForgetAndAnyValid(t *testing.T) {
	jwtManager := utils.NewJWTManager("secret", 0)
	store := NewCredentialStore(jwtManager)
	for _, id := range []int64{1, 2} {
		raw, err := jwtManager.GenerateAccessToken(id, "op", time.Hour)
		require.NoError(t, err)
		_, err = store.Put(raw)
		require.NoError(t, err)
	}

	_, ok := store.AnyValid()
	assert.True(t, ok)

	store.Forget(1)
	store.Forget(2)
	_, ok = store.AnyValid()
	assert.False(t, ok)
}
