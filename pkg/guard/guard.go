// Package guard decides whether a protected route may render for the
// current session.
package guard

import (
	"net/url"
	"strings"

	"github.com/terraconstructs/shopadmin/pkg/sdk"
	"github.com/terraconstructs/shopadmin/pkg/session"
)

// Outcome is what a guarded route renders.
type Outcome int

const (
	// OutcomeLoading renders only a loading placeholder.
	OutcomeLoading Outcome = iota
	// OutcomeLoginRequired renders a denial carrying a way to log in and come back.
	OutcomeLoginRequired
	// OutcomeForbidden renders a denial with a way home. The user is logged in.
	OutcomeForbidden
	// OutcomeAllow renders the protected content.
	OutcomeAllow
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeLoginRequired:
		return "login_required"
	case OutcomeForbidden:
		return "forbidden"
	case OutcomeAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// Decision is the result of evaluating a guard.
type Decision struct {
	Outcome Outcome
	// Required is the role the route asked for, "" for any authenticated user.
	Required sdk.Role
	// From is the location the visitor asked for, to return to after login.
	From string
}

func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow
}

// Evaluate applies the guard rules in order, first match wins:
//
//  1. session not ready: loading
//  2. not authenticated: login required, remembering from
//  3. required role set and not equal (case-insensitive): forbidden
//  4. allow
//
// Loading is checked before authentication and authentication before role,
// so a role is never evaluated against an unsettled session.
func Evaluate(snap session.Snapshot, required sdk.Role, from string) Decision {
	d := Decision{Required: required, From: from}

	switch {
	case !snap.Ready():
		d.Outcome = OutcomeLoading
	case !snap.Authenticated():
		d.Outcome = OutcomeLoginRequired
	case required != "" && !snap.Identity.Role.Is(required):
		d.Outcome = OutcomeForbidden
	default:
		d.Outcome = OutcomeAllow
	}
	return d
}

// LoginURL returns loginPath with from attached as the return location.
func LoginURL(loginPath, from string) string {
	from = SafeReturnPath(from)
	if from == "" || from == "/" {
		return loginPath
	}
	return loginPath + "?" + url.Values{"from": {from}}.Encode()
}

// SafeReturnPath keeps only same-site absolute paths, so a crafted "from"
// cannot redirect off site.
func SafeReturnPath(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return ""
	}
	u, err := url.Parse(from)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return from
}
