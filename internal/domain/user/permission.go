package user

import "context"

// Role sets accepted by RequireRole.
var (
	RolesOrgAdmin   = []Role{RoleAdmin, RoleChairman}
	RolesSupervisor = []Role{RoleSupervisor, RoleChairman}
	RolesAll        = []Role{RoleEmployee, RoleSupervisor, RoleChairman, RoleAdmin}
)

// RequireRole is the single authorization guard. A nil caller is
// unauthenticated; a caller outside roles is forbidden.
func RequireRole(caller *User, roles ...Role) error {
	if caller == nil || !caller.IsActive {
		return ErrUnauthenticated
	}
	if !caller.HasRole(roles...) {
		return ErrForbidden
	}
	return nil
}

// RequireCaller only checks that somebody is signed in.
func RequireCaller(caller *User) error {
	return RequireRole(caller, RolesAll...)
}

type callerKey struct{}

// WithCaller stores the authenticated user on ctx.
func WithCaller(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, callerKey{}, u)
}

// CallerFromContext returns the authenticated user, or nil.
func CallerFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(callerKey{}).(*User)
	return u
}
