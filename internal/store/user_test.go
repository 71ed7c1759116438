package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *UserStore {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndFind(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	created, err := s.Create("alice@example.com", "alice", "hash")
	req.NoError(err)
	req.NotEmpty(created.ID)
	req.False(created.CreatedAt.IsZero())

	found, err := s.FindByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(created.ID, found.ID)
	req.Equal("alice", found.Username)
	req.Equal("hash", found.PasswordHash)
}

func TestCreateDuplicateEmail(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	_, err := s.Create("alice@example.com", "alice", "hash")
	req.NoError(err)

	_, err = s.Create("alice@example.com", "other", "hash2")
	req.ErrorIs(err, ErrUserExists)

	// The original record is untouched.
	found, err := s.FindByEmail("alice@example.com")
	req.NoError(err)
	req.Equal("alice", found.Username)
}

func TestFindMissingUser(t *testing.T) {
	s := openTestStore(t)
	_, err := s.FindByEmail("ghost@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestOpenOnDisk(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	s, err := Open(dir)
	req.NoError(err)
	_, err = s.Create("bob@example.com", "bob", "hash")
	req.NoError(err)
	req.NoError(s.Close())

	// Records survive a reopen.
	s, err = Open(dir)
	req.NoError(err)
	defer s.Close()
	found, err := s.FindByEmail("bob@example.com")
	req.NoError(err)
	req.Equal("bob", found.Username)
}
