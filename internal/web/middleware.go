package web

import (
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/httplog/v3"
)

// Recovery turns a handler panic into a plain 500 response.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recover() != nil {
				// httplog has already recorded the panic by the time we get here.
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// Logging records one ECS log line per request.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return httplog.RequestLogger(logger, &httplog.Options{
		Schema: httplog.SchemaECS.Concise(true),

		// Form bodies carry passwords; only these headers are safe to log.
		LogRequestHeaders:  []string{"Content-Type", "Origin", "Sec-Fetch-Site"},
		LogResponseHeaders: []string{"Location"},
		LogRequestBody:     nil,
		LogResponseBody:    nil,

		RecoverPanics: false,
	})
}

// CrossOrigin rejects state-changing requests sent by other sites with 403.
// The token lives server-side, so a forged form post would otherwise run with
// the signed-in session.
func CrossOrigin(next http.Handler) http.Handler {
	return http.NewCrossOriginProtection().Handler(next)
}

// LoopbackHosts lists the Host names a browser may use to reach a server
// listening on host. Wildcard listen addresses yield nil.
func LoopbackHosts(host string) []string {
	switch host {
	case "", "0.0.0.0", "::":
		return nil
	case "localhost", "127.0.0.1", "::1":
		return []string{"localhost", "127.0.0.1", "::1"}
	}
	return []string{strings.ToLower(host)}
}

// HostCheck answers 403 for requests whose Host header names none of hosts,
// which keeps DNS-rebound pages from reading the views. An empty list allows
// every host.
func HostCheck(hosts []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(hosts) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := r.Host
			if h, _, err := net.SplitHostPort(host); err == nil {
				host = h
			}
			host = strings.Trim(strings.ToLower(host), "[]")
			if !slices.Contains(hosts, host) {
				http.Error(w, "unexpected host", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// applyMiddlewares wraps h so that middlewares[0] sees the request first.
func applyMiddlewares(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
