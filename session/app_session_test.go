package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiptrack/session"
)

func newStore(t *testing.T) *session.AppSessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return session.NewAppSessionStore(rdb, time.Hour)
}

func TestCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	require.NoError(t, st.Create(ctx, "sess-1", "user-1", "coach"))

	as, err := st.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", as.UserID)
	assert.Equal(t, "coach", as.Role)

	require.NoError(t, st.Delete(ctx, "sess-1"))
	_, err = st.Get(ctx, "sess-1")
	assert.Error(t, err)
}

func TestRevokeAllForUser(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	require.NoError(t, st.Create(ctx, "sess-1", "user-1", "admin"))
	require.NoError(t, st.Create(ctx, "sess-2", "user-1", "admin"))
	require.NoError(t, st.Create(ctx, "sess-3", "user-2", "coach"))

	require.NoError(t, st.RevokeAllForUser(ctx, "user-1"))

	_, err := st.Get(ctx, "sess-1")
	assert.Error(t, err, "all of the user's sessions must be gone")
	_, err = st.Get(ctx, "sess-2")
	assert.Error(t, err)

	// other users are untouched
	as, err := st.Get(ctx, "sess-3")
	require.NoError(t, err)
	assert.Equal(t, "user-2", as.UserID)
}
