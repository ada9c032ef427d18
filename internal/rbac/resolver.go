package rbac

import (
	"context"
	"errors"

	"github.com/ubateam/uba-backend/internal/models"
)

// DefaultRoleName is assigned to users created without a usable role list.
const DefaultRoleName = "User"

// Resolver answers role and permission questions for a user. Every call hits
// the store so a role or permission change is visible on the next check.
type Resolver struct {
	Store Store
}

func (r *Resolver) ResolveRoles(ctx context.Context, userID uint) ([]models.Role, error) {
	user, err := r.Store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Roles, nil
}

// ResolvePermissions returns the deduplicated union of permission names
// across all of the user's roles.
func (r *Resolver) ResolvePermissions(ctx context.Context, userID uint) ([]string, error) {
	roles, err := r.ResolveRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var perms []string
	for _, role := range roles {
		for _, p := range role.Permissions {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			perms = append(perms, p.Name)
		}
	}
	return perms, nil
}

// HasRole reports whether the user holds at least one of the required roles.
// Names are compared exactly, case included.
func (r *Resolver) HasRole(ctx context.Context, userID uint, required ...string) (bool, error) {
	roles, err := r.ResolveRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	names := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		names[role.Name] = struct{}{}
	}
	for _, want := range required {
		if _, ok := names[want]; ok {
			return true, nil
		}
	}
	return false, nil
}

// HasPermission reports whether any of the user's roles carries the named
// permission.
func (r *Resolver) HasPermission(ctx context.Context, userID uint, name string) (bool, error) {
	perms, err := r.ResolvePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p == name {
			return true, nil
		}
	}
	return false, nil
}

// RolesForNew resolves the role set for a user being created. Requested ids
// that exist are used; an empty request or one whose ids all miss falls back
// to the default role. A store without the default role is a configuration
// fault, reported as ErrDefaultRoleMissing.
func (r *Resolver) RolesForNew(ctx context.Context, roleIDs []uint) ([]models.Role, error) {
	var roles []models.Role
	for _, id := range roleIDs {
		role, err := r.Store.FindRoleByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrRoleNotFound) {
				continue
			}
			return nil, err
		}
		roles = append(roles, *role)
	}
	if len(roles) > 0 {
		return roles, nil
	}

	def, err := r.Store.FindRoleByName(ctx, DefaultRoleName)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return nil, ErrDefaultRoleMissing
		}
		return nil, err
	}
	return []models.Role{*def}, nil
}
