package nav

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/terraconstructs/shopadmin/pkg/sdk"
	"github.com/terraconstructs/shopadmin/pkg/session"
)

//go:embed model.conf
var casbinModelContent string

// ActionView is the only action menus ask about.
const ActionView = "view"

// Subjects. Known server roles map to role:<role>.
const (
	SubjectAnonymous = "role:anonymous"
	subjectPublic    = "role:public"
	subjectMember    = "role:member"
	subjectUser      = "role:user"
	subjectAdmin     = "role:admin"
)

// defaultPolicies decide which paths each subject may see in a menu. Route
// protection itself is the guard's job; these only mirror it.
var defaultPolicies = [][]string{
	{subjectPublic, "/", ActionView},
	{subjectPublic, "/books", ActionView},
	{subjectPublic, "/books/*", ActionView},
	{subjectPublic, "/contact", ActionView},
	{SubjectAnonymous, "/login", ActionView},
	{SubjectAnonymous, "/register", ActionView},
	{subjectMember, "/account", ActionView},
	{subjectMember, "/logout", ActionView},
	{subjectUser, "/checkout", ActionView},
	{subjectAdmin, "/admin", ActionView},
	{subjectAdmin, "/admin/*", ActionView},
}

var defaultGroupings = [][]string{
	{SubjectAnonymous, subjectPublic},
	{subjectMember, subjectPublic},
	{subjectUser, subjectMember},
	{subjectAdmin, subjectMember},
}

// Subject names the casbin subject for a session snapshot.
func Subject(snap session.Snapshot) string {
	if !snap.Authenticated() {
		return SubjectAnonymous
	}
	role, err := sdk.ParseRole(string(snap.Identity.Role))
	if err != nil {
		return "role:" + strings.ToLower(string(snap.Identity.Role))
	}
	return "role:" + string(role)
}

// NewEnforcer creates a casbin enforcer with the embedded model and the
// default menu policies.
func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	if _, err := enforcer.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("add menu policies: %w", err)
	}
	if _, err := enforcer.AddGroupingPolicies(defaultGroupings); err != nil {
		return nil, fmt.Errorf("add menu role links: %w", err)
	}
	return enforcer, nil
}
