// Package xid builds prefixed identifiers for requests and log correlation.
package xid

import "github.com/google/uuid"

// New returns prefix-<uuid v4>. An empty prefix yields the bare uuid.
func New(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}

// Valid reports whether id looks like something New could have produced,
// so client-supplied request ids can be echoed back safely.
func Valid(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
