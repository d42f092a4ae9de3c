// Package context provides request-scoped values extraction.
package context

import (
	"context"
	"slices"
)

// Roles recognised by the dashboard API.
const (
	RoleAdmin     = "admin"
	RoleInventory = "inventory"
	RoleCashier   = "cashier"
)

// UserContext contains the authenticated dashboard user.
type UserContext struct {
	UserID string
	Email  string
	Roles  []string
}

// HasRole reports whether the user carries role (admins carry every role).
func (u *UserContext) HasRole(role string) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, RoleAdmin) || slices.Contains(u.Roles, role)
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or "system" for background callers.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil && u.UserID != "" {
		return u.UserID
	}
	return "system"
}
