package notify

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
)

type recordingDisplay struct {
	toasts []Toast
}

func (d *recordingDisplay) Add(t Toast) error {
	d.toasts = append(d.toasts, t)
	return nil
}

func TestNotifierShow(t *testing.T) {
	display := &recordingDisplay{}
	n := New(display)

	for _, severity := range []Severity{Success, Info, Warn, Error} {
		if err := n.Show(severity, " Saved ", "Task created "); err != nil {
			t.Fatalf("Show(%s): %v", severity, err)
		}
	}

	if len(display.toasts) != 4 {
		t.Fatalf("got %d toasts, want 4", len(display.toasts))
	}
	seen := map[string]bool{}
	for _, toast := range display.toasts {
		if toast.Life != DefaultLife {
			t.Errorf("Life = %v, want %v", toast.Life, DefaultLife)
		}
		if toast.Summary != "Saved" || toast.Detail != "Task created" {
			t.Errorf("toast = %+v", toast)
		}
		if toast.ID == "" || seen[toast.ID] {
			t.Errorf("toast ID %q should be unique and non-empty", toast.ID)
		}
		seen[toast.ID] = true
	}
	if display.toasts[0].LifeMillis() != 3000 {
		t.Errorf("LifeMillis() = %d, want 3000", display.toasts[0].LifeMillis())
	}
}

func TestNotifierRejectsUnknownSeverity(t *testing.T) {
	display := &recordingDisplay{}
	if err := New(display).Show("fatal", "x", "y"); err == nil {
		t.Fatal("expected error for unknown severity")
	}
	if len(display.toasts) != 0 {
		t.Error("rejected toast must not be displayed")
	}
}

func TestCookieRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	if err := New(Cookie(rec, req)).Show(Success, "Signed in", "Welcome back"); err != nil {
		t.Fatalf("Show: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("cookies = %v", cookies)
	}

	next := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	next.AddCookie(cookies[0])
	clearRec := httptest.NewRecorder()

	toast, ok := ReadAndClear(clearRec, next)
	if !ok {
		t.Fatal("expected pending toast")
	}
	if toast.Severity != Success || toast.Summary != "Signed in" || toast.Detail != "Welcome back" {
		t.Errorf("toast = %+v", toast)
	}

	cleared := clearRec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("cookie should be expired, got %v", cleared)
	}
}

func TestReadAndClearRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"not base64":       "%%%",
		"not json":         base64.RawURLEncoding.EncodeToString([]byte("nope")),
		"unknown severity": base64.RawURLEncoding.EncodeToString([]byte(`{"severity":"fatal","summary":"x"}`)),
		"empty summary":    base64.RawURLEncoding.EncodeToString([]byte(`{"severity":"info"}`)),
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: CookieName, Value: value})
			if _, ok := ReadAndClear(httptest.NewRecorder(), req); ok {
				t.Error("expected invalid toast to be dropped")
			}
		})
	}
}

func TestReadAndClearWithoutCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	if _, ok := ReadAndClear(rec, httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Fatal("expected no toast")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no cookie should be written when none was pending")
	}
}

func TestWriterDisplay(t *testing.T) {
	var buf bytes.Buffer
	if err := New(Writer(&buf)).Show(Warn, "Session expired", "run taskgate login"); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if got, want := buf.String(), "[warn] Session expired: run taskgate login\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
