package route

import (
	"context"
	"log/slog"
	"net/http"
)

// Decision is the outcome of a navigation check. An empty Redirect allows the
// transition.
type Decision struct {
	Redirect string
}

// Allowed reports whether the transition proceeds unchanged.
func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

// Decide applies the access rules for target given whether a token is present.
func Decide(target Descriptor, hasToken bool) Decision {
	switch {
	case target.Access == RequiresAuth && !hasToken:
		return Decision{Redirect: LoginPath}
	case target.Access == GuestOnly && hasToken:
		return Decision{Redirect: ProtectedRoot}
	default:
		return Decision{}
	}
}

// Authenticator reports whether a token is currently stored.
type Authenticator interface {
	Authenticated(ctx context.Context) bool
}

// Guard returns middleware that redirects requests for target according to
// Decide before next runs.
func Guard(auth Authenticator, target Descriptor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := Decide(target, auth.Authenticated(r.Context()))
			if !decision.Allowed() {
				slog.DebugContext(r.Context(), "navigation redirected",
					"path", target.Path, "access", target.Access.String(), "redirect", decision.Redirect)
				http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
