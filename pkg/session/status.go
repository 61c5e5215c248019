// Package session holds the client's authentication state: whether the
// current mount is logged in, and as whom.
package session

import "github.com/terraconstructs/shopadmin/pkg/sdk"

// Status is the session's position in its lifecycle.
//
//	Uninitialized -> Loading -> Authenticated | Anonymous
//
// Logout moves any status to Anonymous.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Settled reports whether s is a terminal status.
func (s Status) Settled() bool {
	return s == StatusAuthenticated || s == StatusAnonymous
}

// Snapshot is a consistent read of the session. Identity is non-nil iff
// Status is StatusAuthenticated, and is a copy owned by the caller.
type Snapshot struct {
	Status   Status
	Identity *sdk.Identity
}

// Ready reports whether bootstrap has settled.
func (s Snapshot) Ready() bool {
	return s.Status.Settled()
}

func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.Identity != nil
}

// Role returns the identity's role, or "" when not authenticated.
func (s Snapshot) Role() sdk.Role {
	if !s.Authenticated() {
		return ""
	}
	return s.Identity.Role
}
