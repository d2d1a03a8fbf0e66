package memory

import (
	"context"
	"testing"

	"github.com/cristianortiz/bidmaster/internal/user/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByID(t *testing.T) {
	alice := domain.User{ID: uuid.New(), Name: "Alice", Email: "alice@uni.edu"}
	repo := NewUserRepository(alice)

	got, err := repo.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, *got)

	_, err = repo.GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	bob := domain.User{ID: uuid.New(), Name: "Bob", Email: "bob@uni.edu"}
	repo.Add(bob)
	got, err = repo.GetByID(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Name)
}

func TestParseUsers(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()

	users, err := ParseUsers(" " + alice.String() + ":alice@uni.edu:Alice ,," + bob.String() + ":bob@uni.edu:Bob: the builder")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, domain.User{ID: alice, Email: "alice@uni.edu", Name: "Alice"}, users[0])
	assert.Equal(t, "Bob: the builder", users[1].Name)

	empty, err := ParseUsers("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, bad := range []string{"not-a-uuid:a@b.c:A", alice.String() + ":alice", alice.String() + ":alice.uni.edu:Alice"} {
		_, err := ParseUsers(bad)
		assert.Error(t, err, bad)
	}
}
