// Package notify shapes short-lived status toasts and hands them to a display.
package notify

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultLife is how long a toast stays visible.
const DefaultLife = 3 * time.Second

// Severity classifies toast presentation.
type Severity string

const (
	Success Severity = "success"
	Info    Severity = "info"
	Warn    Severity = "warn"
	Error   Severity = "error"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case Success, Info, Warn, Error:
		return true
	default:
		return false
	}
}

// Toast is one status message.
type Toast struct {
	ID       string        `json:"id"`
	Severity Severity      `json:"severity"`
	Summary  string        `json:"summary"`
	Detail   string        `json:"detail"`
	Life     time.Duration `json:"life"`
}

// LifeMillis returns Life in milliseconds for page scripts.
func (t Toast) LifeMillis() int64 {
	return t.Life.Milliseconds()
}

// Display presents toasts.
type Display interface {
	Add(t Toast) error
}

// Notifier forwards toasts to a Display with a fixed visible duration.
type Notifier struct {
	display Display
}

// New creates a Notifier over display.
func New(display Display) *Notifier {
	return &Notifier{display: display}
}

// Show presents a toast. Unknown severities are rejected.
func (n *Notifier) Show(severity Severity, summary, detail string) error {
	t, err := Make(severity, summary, detail)
	if err != nil {
		return err
	}
	return n.display.Add(t)
}

// Make builds a toast with a fresh ID and DefaultLife.
func Make(severity Severity, summary, detail string) (Toast, error) {
	if !severity.Valid() {
		return Toast{}, fmt.Errorf("unknown toast severity %q", severity)
	}
	return Toast{
		ID:       uuid.NewString(),
		Severity: severity,
		Summary:  strings.TrimSpace(summary),
		Detail:   strings.TrimSpace(detail),
		Life:     DefaultLife,
	}, nil
}

// writerDisplay prints toasts as single lines, for terminal use.
type writerDisplay struct {
	w io.Writer
}

// Writer returns a Display printing "[severity] summary: detail" lines to w.
func Writer(w io.Writer) Display {
	return writerDisplay{w: w}
}

func (d writerDisplay) Add(t Toast) error {
	line := "[" + string(t.Severity) + "] " + t.Summary
	if t.Detail != "" {
		line += ": " + t.Detail
	}
	_, err := fmt.Fprintln(d.w, line)
	return err
}
