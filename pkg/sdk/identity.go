package sdk

import (
	"fmt"
	"net/url"
	"strings"
)

// Role is a user role as sent by the server. Casing is not normalized.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Roles is the closed set of known roles.
var Roles = []Role{RoleUser, RoleAdmin}

// ParseRole returns the canonical role matching s case-insensitively.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Is compares roles case-insensitively.
func (r Role) Is(other Role) bool {
	return strings.EqualFold(string(r), string(other))
}

func (r Role) String() string {
	return string(r)
}

// Identity is the authenticated user's profile snapshot.
type Identity struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Role     Role   `json:"role"`
	Avatar   string `json:"avatar,omitempty"`
}

// AvatarURL resolves the avatar reference against the backend's image path.
// It returns "" when the identity has no avatar.
func (i Identity) AvatarURL(backendURL string) string {
	if i.Avatar == "" {
		return ""
	}
	if strings.HasPrefix(i.Avatar, "http://") || strings.HasPrefix(i.Avatar, "https://") {
		return i.Avatar
	}
	u, err := url.JoinPath(backendURL, "images", "avatar", i.Avatar)
	if err != nil {
		return ""
	}
	return u
}

// DisplayName falls back to the email when no full name is set.
func (i Identity) DisplayName() string {
	if i.FullName != "" {
		return i.FullName
	}
	return i.Email
}
