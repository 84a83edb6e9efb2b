package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/florianilch/taskgate/internal/apiclient"
	"github.com/florianilch/taskgate/internal/notify"
	"github.com/florianilch/taskgate/internal/route"
)

//go:embed templates/*.html
var templateFS embed.FS

// formValues echoes submitted fields back into a re-rendered form. Passwords
// are never echoed.
type formValues struct {
	Username    string
	Email       string
	Title       string
	Description string
}

// pageData is the root value passed to every view template.
type pageData struct {
	Title         string
	Authenticated bool
	Toast         *notify.Toast
	Tasks         []apiclient.Task
	Form          formValues
}

var viewTitles = map[route.View]string{
	route.ViewHome:     "Home",
	route.ViewTaskList: "Tasks",
	route.ViewLogin:    "Sign in",
	route.ViewRegister: "Register",
}

// parseViews parses the layout together with each view's content template.
func parseViews() (map[route.View]*template.Template, error) {
	views := make(map[route.View]*template.Template, len(viewTitles))
	for view := range viewTitles {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+string(view)+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s view: %w", view, err)
		}
		views[view] = tmpl
	}
	return views, nil
}

// render executes view into a buffer so template errors never produce a
// partial page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, view route.View, data pageData) {
	tmpl, ok := s.views[view]
	if !ok {
		slog.ErrorContext(r.Context(), "no template for view", "view", view)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data.Title = viewTitles[view]
	data.Authenticated = s.auth.Authenticated(r.Context())
	// A pending toast is always consumed; one set by the handler wins.
	if toast, ok := notify.ReadAndClear(w, r); ok && data.Toast == nil {
		data.Toast = &toast
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.ErrorContext(r.Context(), "failed to render view", "view", view, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		slog.DebugContext(r.Context(), "client went away during render", "error", err)
	}
}
