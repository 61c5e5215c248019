package guard

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/terraconstructs/shopadmin/pkg/sdk"
	"github.com/terraconstructs/shopadmin/pkg/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Guard renders guard decisions for net/http routes. The session is read from
// the request context (see session.Provide).
type Guard struct {
	LoginPath string
	HomePath  string
	Logger    *slog.Logger
}

// New returns a Guard with the conventional /login and / paths.
func New(logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Guard{LoginPath: "/login", HomePath: "/", Logger: logger}
}

type viewData struct {
	Title    string
	Refresh  bool
	LoginURL string
	HomeURL  string
}

// Require guards a subtree. An empty role admits any authenticated user.
func (g *Guard) Require(role sdk.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := session.MustFromContext(r.Context())
			d := Evaluate(m.Snapshot(), role, r.URL.RequestURI())
			if d.Allowed() {
				next.ServeHTTP(w, r)
				return
			}
			g.Deny(w, r, d)
		})
	}
}

// RequireReady shows only the loading view, for every route, until the
// session is ready.
func (g *Guard) RequireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := session.MustFromContext(r.Context())
		if !m.Ready() {
			g.Deny(w, r, Decision{Outcome: OutcomeLoading, From: r.URL.RequestURI()})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Deny writes the view for a non-allow decision.
func (g *Guard) Deny(w http.ResponseWriter, r *http.Request, d Decision) {
	data := viewData{HomeURL: g.HomePath}
	var name string
	status := http.StatusForbidden

	switch d.Outcome {
	case OutcomeLoading:
		name, status = "loading", http.StatusOK
		data.Title = "Loading"
		data.Refresh = true
		w.Header().Set("Retry-After", "1")
	case OutcomeLoginRequired:
		name = "login_required"
		data.Title = "Login required"
		data.LoginURL = LoginURL(g.LoginPath, d.From)
	case OutcomeForbidden:
		name = "forbidden"
		data.Title = "Forbidden"
		g.Logger.Info("role denied", "path", r.URL.Path, "required", d.Required.String())
	default:
		g.Logger.Error("deny called with allow decision", "path", r.URL.Path)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := views.ExecuteTemplate(w, name, data); err != nil {
		g.Logger.Error("render guard view", "view", name, "error", err)
	}
}
