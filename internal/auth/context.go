// internal/auth/context.go
//
// Signed-in staff user carried on the request context.
//
// Usage
// -----
//
//	ctx = auth.WithUser(ctx, &auth.User{ID: sub, Email: email})
//	u, ok := auth.UserFrom(ctx)
//
// Notes
// -----
// • RequireAdmin is the only writer.  Handlers behind it may assume ok.
package auth

import "context"

// User is the verified identity from the provider's session token.
type User struct {
	ID    string
	Email string
}

type userKey struct{}

// WithUser returns a new context carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom extracts the user from ctx.  It returns (nil, false) if no user
// is set.
func UserFrom(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey{}).(*User)
	return u, ok && u != nil
}
