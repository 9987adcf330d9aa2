package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jastipku/jastipku/internal/platform/docstore"
	"github.com/jastipku/jastipku/internal/shared"
)

// MsgAccountDisabled is shown when an inactive user signs in.
const MsgAccountDisabled = "Akun Anda telah dinonaktifkan. Hubungi admin."

// Service wraps authentication business rules.
type Service struct {
	store    docstore.Store
	verifier TokenVerifier
	admins   map[string]struct{}
	now      func() time.Time
}

// NewService constructs a new Service. Accounts whose email is in
// adminEmails receive the admin role on sign-in.
func NewService(store docstore.Store, verifier TokenVerifier, adminEmails []string) *Service {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = struct{}{}
		}
	}
	return &Service{store: store, verifier: verifier, admins: admins, now: time.Now}
}

// SignInWithGoogle verifies the token, then finds or creates the matching
// user.
func (s *Service) SignInWithGoogle(ctx context.Context, idToken string) (User, error) {
	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
	}
	if identity.Subject == "" {
		return User{}, fmt.Errorf("%w: subject missing", shared.ErrInvalidCredentials)
	}
	now := s.now().UTC()
	user, err := s.findByGoogleID(ctx, identity.Subject)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		user = User{
			GoogleID:    identity.Subject,
			Email:       identity.Email,
			Name:        identity.Name,
			Role:        s.roleFor(identity.Email, shared.RoleMember),
			IsActive:    true,
			LastLoginAt: now,
		}
		id, err := s.store.Create(ctx, Collection, user)
		if err != nil {
			return User{}, shared.StoreError("Gagal membuat akun", err)
		}
		user.ID = id
		return user, nil
	case err != nil:
		return User{}, shared.StoreError("Gagal memuat akun", err)
	}
	if !user.IsActive {
		return User{}, &shared.UserError{Message: MsgAccountDisabled, Err: shared.ErrPermissionDenied}
	}
	user.Email = identity.Email
	user.Name = identity.Name
	user.Role = s.roleFor(identity.Email, user.Role)
	user.LastLoginAt = now
	err = s.store.Update(ctx, Collection, user.ID, map[string]any{
		"email":       user.Email,
		"name":        user.Name,
		"role":        user.Role,
		"lastLoginAt": user.LastLoginAt,
	})
	if err != nil {
		return User{}, shared.StoreError("Gagal memperbarui akun", err)
	}
	return user, nil
}

// Actor converts a user into the session actor.
func (u User) Actor() shared.Actor {
	return shared.Actor{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (s *Service) roleFor(email, fallback string) string {
	if _, ok := s.admins[strings.ToLower(strings.TrimSpace(email))]; ok {
		return shared.RoleAdmin
	}
	if fallback == "" {
		return shared.RoleMember
	}
	return fallback
}

func (s *Service) findByGoogleID(ctx context.Context, googleID string) (User, error) {
	q := docstore.Where("googleId", googleID)
	q.Limit = 1
	docs, err := s.store.Query(ctx, Collection, q)
	if err != nil {
		return User{}, err
	}
	if len(docs) == 0 {
		return User{}, docstore.ErrNotFound
	}
	var user User
	if err := docs[0].Decode(&user); err != nil {
		return User{}, err
	}
	return user, nil
}
