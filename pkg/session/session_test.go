package session_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/goliatone/go-pawhealth/internal/store"
	"github.com/goliatone/go-pawhealth/pkg/client"
	"github.com/goliatone/go-pawhealth/pkg/session"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func deps(t *testing.T) session.Deps {
	t.Helper()
	keyring.MockInit()
	db := openStore(t)
	return session.Deps{
		Tokens: session.NewKeychainStore("pawhealth-test"),
		State:  db,
	}
}

func TestStartRestoreClose(t *testing.T) {
	ctx := context.Background()
	d := deps(t)
	user := client.User{ID: "u-1", Email: "vet@example.com", Role: "admin"}

	s, err := session.Start(ctx, d, " tok-123 ", user)
	require.NoError(t, err)
	token, err := s.Auth.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
	assert.True(t, s.Admin.IsAdmin())
	assert.NoError(t, s.Admin.Require())

	restored, err := session.Restore(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, user, restored.Auth.User())

	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))
	_, err = s.Auth.Token(ctx)
	assert.ErrorIs(t, err, client.ErrUnauthenticated)
	assert.False(t, s.Admin.IsAdmin())

	_, err = session.Restore(ctx, d)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestStart_RequiresToken(t *testing.T) {
	_, err := session.Start(context.Background(), deps(t), "  ", client.User{})
	assert.Error(t, err)
}

func TestAdmin_RequireRejectsMembers(t *testing.T) {
	s, err := session.Start(context.Background(), deps(t), "tok", client.User{ID: "u-2", Role: "user"})
	require.NoError(t, err)
	err = s.Admin.Require()
	assert.ErrorIs(t, err, client.ErrForbidden)
}

type brokenStore struct{}

func (brokenStore) Save(context.Context, string) error    { return errors.New("no keychain") }
func (brokenStore) Load(context.Context) (string, error) { return "", errors.New("no keychain") }
func (brokenStore) Delete(context.Context) error          { return errors.New("no keychain") }

func TestFallbackStore_UsesStateDatabase(t *testing.T) {
	ctx := context.Background()
	db := openStore(t)
	tokens := session.NewFallbackStore(brokenStore{}, session.NewKVStore(db, "session.token"), nil)

	_, err := tokens.Load(ctx)
	assert.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, tokens.Save(ctx, "tok-9"))
	got, err := tokens.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-9", got)

	require.NoError(t, tokens.Delete(ctx))
	_, err = tokens.Load(ctx)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

type meAPI struct{ user client.User }

func (m meAPI) Me(context.Context) (client.User, error) { return m.user, nil }

func TestRefresh_UpdatesCachedUser(t *testing.T) {
	ctx := context.Background()
	d := deps(t)
	s, err := session.Start(ctx, d, "tok", client.User{ID: "u-1", Role: "user"})
	require.NoError(t, err)

	_, err = s.Refresh(ctx, meAPI{user: client.User{ID: "u-1", Role: "admin"}})
	require.NoError(t, err)
	assert.True(t, s.Admin.IsAdmin())

	restored, err := session.Restore(ctx, d)
	require.NoError(t, err)
	assert.True(t, restored.Auth.User().IsAdmin())
}

func TestMessages(t *testing.T) {
	var m session.Messages
	m.Info("saved")
	m.Error(&client.APIError{Status: 422, Message: "name is required"})

	pending := m.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, session.LevelError, pending[1].Level)
	assert.Equal(t, "name is required", pending[1].Text)

	assert.Len(t, m.Drain(), 2)
	assert.Empty(t, m.Pending())
}
