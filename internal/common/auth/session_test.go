// internal/common/auth/session_test.go
package auth

import (
	"context"
	"testing"
	"time"

	"crm-insights/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, "session:token:"), mr
}

func TestSessionStore_SaveAndLookup(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()
	team := int64(3)

	session := &models.Session{
		ID:            "s1",
		UserID:        7,
		Role:          models.RoleUser,
		CurrentTeamID: &team,
		ExpiresAt:     time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, "tok", session))
	assert.True(t, mr.Exists("session:token:tok"))
	assert.True(t, mr.TTL("session:token:tok") > 0)

	got, err := store.Lookup(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, models.Caller{ID: 7, Role: models.RoleUser, CurrentTeamID: &team}, got.Caller())
}

func TestSessionStore_Lookup_Errors(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	_, err := store.Lookup(ctx, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Lookup(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, mr.Set("session:token:stale", `{"userId":1,"role":"user","expiresAt":"2000-01-01T00:00:00Z"}`))
	_, err = store.Lookup(ctx, "stale")
	assert.ErrorIs(t, err, ErrSessionExpired)

	require.NoError(t, mr.Set("session:token:garbage", `not-json`))
	_, err = store.Lookup(ctx, "garbage")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_Lookup_StoreDown(t *testing.T) {
	store, mr := setupStore(t)
	mr.Close()

	_, err := store.Lookup(context.Background(), "tok")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_Revoke(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "tok", &models.Session{UserID: 1, Role: models.RoleAdmin}))
	require.NoError(t, store.Revoke(ctx, "tok"))
	assert.False(t, mr.Exists("session:token:tok"))
}

func TestSessionStore_Save_Expired(t *testing.T) {
	store, _ := setupStore(t)
	err := store.Save(context.Background(), "tok", &models.Session{ExpiresAt: time.Now().Add(-time.Minute)})
	assert.ErrorIs(t, err, ErrSessionExpired)
}
