package shared

import "context"

// Roles recognised by the dashboard.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Session keys holding the signed-in user's profile.
const (
	SessionKeyName  = "user_name"
	SessionKeyEmail = "user_email"
	SessionKeyRole  = "user_role"
)

// Actor is the signed-in user performing an operation.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// ActorProvider resolves the current actor for audit stamping.
type ActorProvider interface {
	CurrentActor(ctx context.Context) (Actor, bool)
}

// ContextActors reads the actor from the request context.
type ContextActors struct{}

// CurrentActor implements ActorProvider.
func (ContextActors) CurrentActor(ctx context.Context) (Actor, bool) {
	return ActorFromContext(ctx)
}

// ActorFromSession rebuilds the actor stored by the login handler.
func ActorFromSession(sess *Session) (Actor, bool) {
	if sess == nil || sess.User() == "" {
		return Actor{}, false
	}
	return Actor{
		ID:    sess.User(),
		Name:  sess.Get(SessionKeyName),
		Email: sess.Get(SessionKeyEmail),
		Role:  sess.Get(SessionKeyRole),
	}, true
}
