package shell

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/terraconstructs/shopadmin/pkg/credstore"
	"github.com/terraconstructs/shopadmin/pkg/guard"
	"github.com/terraconstructs/shopadmin/pkg/nav"
	"github.com/terraconstructs/shopadmin/pkg/sdk"
	"github.com/terraconstructs/shopadmin/pkg/session"
)

// sessionView is the JSON shape of /api/session.
type sessionView struct {
	Status        string        `json:"status"`
	Ready         bool          `json:"ready"`
	Authenticated bool          `json:"authenticated"`
	User          *sdk.Identity `json:"user,omitempty"`
	AvatarURL     string        `json:"avatarUrl,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	snap := session.MustFromContext(r.Context()).Snapshot()
	view := sessionView{
		Status:        snap.Status.String(),
		Ready:         snap.Ready(),
		Authenticated: snap.Authenticated(),
		User:          snap.Identity,
	}
	if snap.Authenticated() {
		view.AvatarURL = snap.Identity.AvatarURL(s.opts.Client.BaseURL())
	}
	writeJSON(w, http.StatusOK, view)
}

// handleReload re-runs bootstrap from storage, as a page reload would.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.Remount()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": session.StatusLoading.String()})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "home", http.StatusOK, pageData{Title: "Home"})
}

func (s *Server) handlePage(title, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, "page", http.StatusOK, pageData{Title: title, Body: body})
	}
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	from := guard.SafeReturnPath(r.URL.Query().Get("from"))
	if session.MustFromContext(r.Context()).Snapshot().Authenticated() {
		http.Redirect(w, r, returnPath(from), http.StatusSeeOther)
		return
	}
	s.render(w, r, "login", http.StatusOK, pageData{Title: "Log in", From: from})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	from := guard.SafeReturnPath(r.PostFormValue("from"))

	if username == "" || password == "" {
		s.render(w, r, "login", http.StatusBadRequest, pageData{Title: "Log in", From: from, Error: "Email and password are required."})
		return
	}

	res, err := s.opts.Client.Login(r.Context(), sdk.LoginInput{Username: username, Password: password})
	if err != nil {
		msg := "Login failed. Please try again later."
		var apiErr *sdk.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			msg = "Invalid email or password."
		}
		s.opts.Logger.Info("login failed", "error", err)
		s.render(w, r, "login", http.StatusUnauthorized, pageData{Title: "Log in", From: from, Error: msg})
		return
	}

	if err := credstore.SaveLogin(r.Context(), s.opts.Store, res.AccessToken, res.User); err != nil {
		s.opts.Logger.Error("persist login", "error", err)
		s.render(w, r, "login", http.StatusInternalServerError, pageData{Title: "Log in", From: from, Error: "Could not save the session."})
		return
	}

	// The new mount resolves the stored token; waiting here lets the
	// redirect land on a settled session instead of the loading view.
	seq := s.Remount()
	if _, err := seq.Wait(r.Context()); err != nil {
		s.opts.Logger.Debug("login redirect before session settled", "error", err)
	}
	http.Redirect(w, r, returnPath(from), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session.MustFromContext(r.Context()).Logout(r.Context())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "account", http.StatusOK, pageData{Title: "Account"})
}

func (s *Server) adminData(r *http.Request, title string) pageData {
	snap := session.MustFromContext(r.Context()).Snapshot()
	items, err := s.opts.Nav.Items(nav.MenuAdmin, snap)
	if err != nil {
		s.opts.Logger.Error("build admin menu", "error", err)
	}
	return pageData{Title: title, AdminMenu: items, AdminKey: nav.ActiveKey(items, r.URL.Path)}
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "admin", http.StatusOK, s.adminData(r, "Dashboard"))
}

func (s *Server) handleAdminPage(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, "admin", http.StatusOK, s.adminData(r, title))
	}
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	data := s.adminData(r, "Manage Users")

	current, _ := strconv.Atoi(r.URL.Query().Get("current"))
	res, err := s.opts.Client.ListUsers(r.Context(), sdk.PageInput{Current: current, PageSize: 10})
	if err != nil {
		s.opts.Logger.Warn("list users", "error", err)
		data.Error = "Could not load users."
	} else {
		data.Users = res.Result
		data.Meta = res.Meta
	}
	s.render(w, r, "users", http.StatusOK, data)
}

func returnPath(from string) string {
	if from == "" {
		return "/"
	}
	return from
}
