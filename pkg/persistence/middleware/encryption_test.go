package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/remnawizard/pkg/adapters/memory"
	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/aretw0/remnawizard/pkg/persistence/middleware"
	"github.com/aretw0/remnawizard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func secure(t *testing.T, next ports.SessionStore, active []byte, fallback ...[]byte) ports.SessionStore {
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    active,
		FallbackKeys: fallback,
	})
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, secure(t, memory.NewStore(), generateKey(t)))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	store := secure(t, underlying, generateKey(t))
	ctx := context.Background()

	original := domain.NewSession(1)
	original.CurrentStep = domain.StepTag
	original.Fields.Email = domain.Ptr("alice@example.com")

	require.NoError(t, store.Save(ctx, 1, original))

	stored, err := underlying.Load(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, stored.Fields.Email, "fields must not be persisted in clear")
	assert.NotEmpty(t, stored.Sealed)
	assert.Equal(t, domain.StepTag, stored.CurrentStep)

	loaded, err := store.Load(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, loaded.Fields.Email)
	assert.Equal(t, "alice@example.com", *loaded.Fields.Email)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	original := domain.NewSession(2)
	original.Fields.Username = "sealed_with_old_key"
	require.NoError(t, secure(t, underlying, oldKey).Save(ctx, 2, original))

	loaded, err := secure(t, underlying, newKey, oldKey).Load(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "sealed_with_old_key", loaded.Fields.Username)

	_, err = secure(t, underlying, generateKey(t)).Load(ctx, 2)
	assert.Error(t, err, "unknown key must not decrypt")
}

func TestEncryptionMiddleware_RejectsPlainSession(t *testing.T) {
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(context.Background(), 3, domain.NewSession(3)))

	_, err := secure(t, underlying, generateKey(t)).Load(context.Background(), 3)
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestNewEncryptionMiddleware_KeySize(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)
}
