package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jastipku/jastipku/internal/platform/docstore"
	"github.com/jastipku/jastipku/internal/shared"
	_ "github.com/jastipku/jastipku/internal/testing/guard"
)

type fixedVerifier struct {
	identity Identity
	err      error
}

func (f fixedVerifier) Verify(context.Context, string) (Identity, error) {
	return f.identity, f.err
}

func TestSignInCreatesMember(t *testing.T) {
	store := docstore.NewMemory()
	svc := NewService(store, fixedVerifier{identity: Identity{Subject: "g-1", Email: "rina@example.com", Name: "Rina"}}, []string{" OWNER@example.com "})
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	user, err := svc.SignInWithGoogle(context.Background(), "token")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, shared.RoleMember, user.Role)
	assert.True(t, user.IsActive)
	assert.Equal(t, now, user.LastLoginAt)

	doc, err := store.Get(context.Background(), Collection, user.ID)
	require.NoError(t, err)
	var stored User
	require.NoError(t, doc.Decode(&stored))
	assert.Equal(t, "g-1", stored.GoogleID)
}

func TestSignInPromotesAdminEmail(t *testing.T) {
	store := docstore.NewMemory()
	ctx := context.Background()
	id, err := store.Create(ctx, Collection, User{GoogleID: "g-9", Email: "owner@example.com", Name: "Old", Role: shared.RoleMember, IsActive: true})
	require.NoError(t, err)

	svc := NewService(store, fixedVerifier{identity: Identity{Subject: "g-9", Email: "owner@example.com", Name: "Owner"}}, []string{"Owner@Example.com"})
	user, err := svc.SignInWithGoogle(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, shared.RoleAdmin, user.Role)
	assert.Equal(t, "Owner", user.Name)
	assert.Equal(t, 1, store.Count(Collection))
}

func TestSignInKeepsStoredRole(t *testing.T) {
	store := docstore.NewMemory()
	ctx := context.Background()
	_, err := store.Create(ctx, Collection, User{GoogleID: "g-3", Role: shared.RoleAdmin, IsActive: true})
	require.NoError(t, err)

	svc := NewService(store, fixedVerifier{identity: Identity{Subject: "g-3", Email: "staff@example.com"}}, nil)
	user, err := svc.SignInWithGoogle(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleAdmin, user.Role)
}

func TestSignInErrors(t *testing.T) {
	ctx := context.Background()

	svc := NewService(docstore.NewMemory(), fixedVerifier{err: errors.New("expired")}, nil)
	_, err := svc.SignInWithGoogle(ctx, "token")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	svc = NewService(docstore.NewMemory(), fixedVerifier{identity: Identity{Email: "x@example.com"}}, nil)
	_, err = svc.SignInWithGoogle(ctx, "token")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	store := docstore.NewMemory()
	_, err = store.Create(ctx, Collection, User{GoogleID: "g-4", IsActive: false})
	require.NoError(t, err)
	svc = NewService(store, fixedVerifier{identity: Identity{Subject: "g-4"}}, nil)
	_, err = svc.SignInWithGoogle(ctx, "token")
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
	assert.EqualError(t, err, MsgAccountDisabled)
}
