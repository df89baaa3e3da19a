// Package revocation implements the token revocation list consulted on every
// authenticated request. Entries expire with the token they revoke, so the
// list stays bounded by the access token TTL.
package revocation

import (
	"context"
	"time"
)

// List records revoked token identifiers until their natural expiry.
type List interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
