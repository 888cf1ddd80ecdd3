package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestCLIStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewCLIStore(t.TempDir())
	require.NoError(t, err)

	sess, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess, "empty store")

	saved := New(&oauth2.Token{AccessToken: "gho_abc", TokenType: "bearer"}, "octocat")
	require.NoError(t, store.SaveSession(ctx, saved))

	got, err := store.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "github", got.ID)
	assert.Equal(t, "octocat", got.Login)
	assert.Equal(t, "gho_abc", got.AccessToken)
	assert.True(t, got.ExpiresAt.IsZero())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, store.DeleteSession(ctx))
	require.NoError(t, store.DeleteSession(ctx), "deleting twice")
	got, err = store.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileStoreExpired(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	sess := New(&oauth2.Token{AccessToken: "t", Expiry: time.Now().Add(-time.Minute)}, "")
	require.NoError(t, store.Set(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileStoreCorrupt(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.sessionPath("bad"), []byte("{"), 0o600))

	_, err = store.Get(ctx, "bad")
	assert.Error(t, err)
}

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{"no expiry", time.Time{}, false},
		{"future", time.Now().Add(time.Hour), false},
		{"past", time.Now().Add(-time.Hour), true},
	}
	for _, tt := range tests {
		s := &Session{ExpiresAt: tt.expires}
		if got := s.IsExpired(); got != tt.want {
			t.Errorf("%s: IsExpired() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
