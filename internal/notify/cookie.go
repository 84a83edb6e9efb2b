package notify

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

// CookieName carries the pending toast across a redirect.
const CookieName = "taskgate_toast"

// cookieDisplay stores the toast in a one-time cookie for the next page render.
type cookieDisplay struct {
	w http.ResponseWriter
	r *http.Request
}

// Cookie returns a Display that writes the toast to w as a one-time cookie.
func Cookie(w http.ResponseWriter, r *http.Request) Display {
	return cookieDisplay{w: w, r: r}
}

func (d cookieDisplay) Add(t Toast) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return err
	}
	http.SetCookie(d.w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   d.r != nil && d.r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ReadAndClear returns the pending toast, if any, and expires its cookie.
func ReadAndClear(w http.ResponseWriter, r *http.Request) (Toast, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Toast{}, false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	return decodeToast(cookie.Value)
}

func decodeToast(raw string) (Toast, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Toast{}, false
	}
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return Toast{}, false
	}
	var t Toast
	if err := json.Unmarshal(decoded, &t); err != nil {
		return Toast{}, false
	}
	if !t.Severity.Valid() || t.Summary == "" {
		return Toast{}, false
	}
	if t.Life <= 0 {
		t.Life = DefaultLife
	}
	return t, true
}
