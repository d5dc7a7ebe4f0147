package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "users.dat"))
	s.Cost = bcrypt.MinCost
	return s
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.UserDataExists())

	require.NoError(t, s.Register("admin", "hunter2"))
	assert.True(t, s.UserDataExists())

	assert.NoError(t, s.Login("admin", "hunter2"))
	assert.ErrorIs(t, s.Login("admin", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, s.Login("nobody", "hunter2"), ErrInvalidCredentials)
}

func TestRegisterDuplicateUser(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Register("admin", "a"))
	err := s.Register("admin", "b")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterMultipleUsers(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Register("alice", "pw1"))
	require.NoError(t, s.Register("bob", "pw2"))
	assert.NoError(t, s.Login("alice", "pw1"))
	assert.NoError(t, s.Login("bob", "pw2"))
}

func TestRegisterRejectsBadUsernames(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.Register("", "pw"))
	assert.Error(t, s.Register("a:b", "pw"))
}

func TestPasswordsAreNotStoredInPlaintext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.dat")
	s := NewStore(path)
	s.Cost = bcrypt.MinCost
	require.NoError(t, s.Register("admin", "supersecret"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "supersecret")
}

func TestLoadRejectsMalformedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.dat")
	require.NoError(t, os.WriteFile(path, []byte("garbage-without-separator\n"), 0o600))
	s := NewStore(path)
	err := s.Login("x", "y")
	assert.Error(t, err)
}
