// Package auth carries the authenticated caller through request handling.
package auth

import "context"

// Identity is the authenticated caller. A zero UserID means anonymous.
type Identity struct {
	UserID   uint
	Username string
	Email    string
}

// Authenticated reports whether the identity names a user.
func (i Identity) Authenticated() bool {
	return i.UserID != 0
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.Authenticated()
}
