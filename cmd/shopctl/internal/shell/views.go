package shell

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/terraconstructs/shopadmin/pkg/nav"
	"github.com/terraconstructs/shopadmin/pkg/sdk"
	"github.com/terraconstructs/shopadmin/pkg/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"home", "page", "login", "account", "admin", "users"} {
		pages[name] = template.Must(template.ParseFS(templateFS,
			"templates/layout.html", "templates/adminmenu.html", "templates/"+name+".html"))
	}
}

type pageData struct {
	Title     string
	Body      string
	Snap      session.Snapshot
	Header    []nav.Item
	Active    string
	AdminMenu []nav.Item
	AdminKey  string
	AvatarURL string
	From      string
	Error     string
	Users     []sdk.User
	Meta      sdk.PageMeta
}

// render fills the header from the request's session and writes the page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, status int, data pageData) {
	snap := session.MustFromContext(r.Context()).Snapshot()
	data.Snap = snap

	header, err := s.opts.Nav.Items(nav.MenuHeader, snap)
	if err != nil {
		s.opts.Logger.Error("build header menu", "error", err)
	}
	data.Header = header
	data.Active = nav.ActiveKey(header, r.URL.Path)
	if snap.Authenticated() {
		data.AvatarURL = snap.Identity.AvatarURL(s.opts.Client.BaseURL())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := pages[name].ExecuteTemplate(w, "layout", data); err != nil {
		s.opts.Logger.Error("render page", "page", name, "error", err)
	}
}
