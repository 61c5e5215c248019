// Package nav builds role-aware menus from the current session.
package nav

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/terraconstructs/shopadmin/pkg/session"
)

// Menu names a menu of the shell.
type Menu string

const (
	MenuHeader Menu = "header"
	MenuAdmin  Menu = "admin"
)

// Item is a menu entry. Items with children are groups and are shown when
// any child is visible.
type Item struct {
	Key      string
	Label    string
	Path     string
	Children []Item
}

var defaultMenus = map[Menu][]Item{
	MenuHeader: {
		{Key: "home", Label: "Home", Path: "/"},
		{Key: "books", Label: "Books", Path: "/books"},
		{Key: "contact", Label: "Contact", Path: "/contact"},
		{Key: "checkout", Label: "Checkout", Path: "/checkout"},
		{Key: "admin", Label: "Admin", Path: "/admin"},
		{Key: "account", Label: "Account", Path: "/account"},
		{Key: "logout", Label: "Log out", Path: "/logout"},
		{Key: "login", Label: "Log in", Path: "/login"},
		{Key: "register", Label: "Register", Path: "/register"},
	},
	MenuAdmin: {
		{Key: "dashboard", Label: "Dashboard", Path: "/admin"},
		{Key: "user", Label: "Manage Users", Children: []Item{
			{Key: "crud", Label: "CRUD", Path: "/admin/user"},
		}},
		{Key: "book", Label: "Manage Books", Path: "/admin/book"},
		{Key: "order", Label: "Manage Orders", Path: "/admin/order"},
	},
}

// Shell filters menus through a casbin policy. Filtered menus are cached per
// menu and subject; the returned slices must not be modified.
type Shell struct {
	enforcer casbin.IEnforcer
	menus    map[Menu][]Item
	cache    *lru.Cache[string, []Item]
}

// New returns a Shell over the default menus and policies.
func New(cacheSize int) (*Shell, error) {
	enforcer, err := NewEnforcer()
	if err != nil {
		return nil, err
	}
	return NewWithEnforcer(enforcer, defaultMenus, cacheSize)
}

// NewWithEnforcer returns a Shell over custom menus and policies.
func NewWithEnforcer(enforcer casbin.IEnforcer, menus map[Menu][]Item, cacheSize int) (*Shell, error) {
	cache, err := lru.New[string, []Item](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create menu cache: %w", err)
	}
	return &Shell{enforcer: enforcer, menus: menus, cache: cache}, nil
}

// Items returns the entries of menu visible to the session.
func (s *Shell) Items(menu Menu, snap session.Snapshot) ([]Item, error) {
	subject := Subject(snap)
	cacheKey := string(menu) + "|" + subject
	if items, ok := s.cache.Get(cacheKey); ok {
		return items, nil
	}

	items, err := s.filter(subject, s.menus[menu])
	if err != nil {
		return nil, err
	}
	s.cache.Add(cacheKey, items)
	return items, nil
}

// Can reports whether the session may see path in a menu.
func (s *Shell) Can(snap session.Snapshot, path string) (bool, error) {
	return s.enforcer.Enforce(Subject(snap), path, ActionView)
}

// Invalidate drops cached menus, e.g. after a policy change.
func (s *Shell) Invalidate() {
	s.cache.Purge()
}

func (s *Shell) filter(subject string, items []Item) ([]Item, error) {
	var visible []Item
	for _, item := range items {
		if len(item.Children) > 0 {
			children, err := s.filter(subject, item.Children)
			if err != nil {
				return nil, err
			}
			if len(children) == 0 {
				continue
			}
			item.Children = children
			visible = append(visible, item)
			continue
		}

		ok, err := s.enforcer.Enforce(subject, item.Path, ActionView)
		if err != nil {
			return nil, fmt.Errorf("enforce %s on %s: %w", subject, item.Path, err)
		}
		if ok {
			visible = append(visible, item)
		}
	}
	return visible, nil
}

// ActiveKey returns the key of the item whose path is the longest prefix of
// path, searching groups too. "/" only matches itself.
func ActiveKey(items []Item, path string) string {
	key, _ := activeKey(items, path)
	return key
}

func activeKey(items []Item, path string) (string, int) {
	bestKey, bestLen := "", -1
	for _, item := range items {
		if len(item.Children) > 0 {
			if k, l := activeKey(item.Children, path); l > bestLen {
				bestKey, bestLen = k, l
			}
			continue
		}
		if matchesPath(item.Path, path) && len(item.Path) > bestLen {
			bestKey, bestLen = item.Key, len(item.Path)
		}
	}
	return bestKey, bestLen
}

func matchesPath(itemPath, path string) bool {
	if itemPath == "" {
		return false
	}
	if itemPath == "/" {
		return path == "/"
	}
	return path == itemPath || strings.HasPrefix(path, strings.TrimRight(itemPath, "/")+"/")
}
