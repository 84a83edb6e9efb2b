// Package route holds the static view table and the navigation guard that
// gates it on authentication state.
package route

import "fmt"

// Access classifies who may visit a route.
type Access int

const (
	// Open routes are reachable regardless of authentication state.
	Open Access = iota
	// RequiresAuth routes are reachable only with a stored token.
	RequiresAuth
	// GuestOnly routes are reachable only without a stored token.
	GuestOnly
)

func (a Access) String() string {
	switch a {
	case Open:
		return "open"
	case RequiresAuth:
		return "requires-auth"
	case GuestOnly:
		return "guest-only"
	default:
		return fmt.Sprintf("Access(%d)", int(a))
	}
}

// View names the page rendered for a route.
type View string

const (
	ViewHome     View = "home"
	ViewTaskList View = "tasks"
	ViewLogin    View = "login"
	ViewRegister View = "register"
)

const (
	// HomePath is the landing page.
	HomePath = "/"
	// LoginPath is where unauthenticated visitors of protected routes are sent.
	LoginPath = "/login"
	// RegisterPath is the sign-up page.
	RegisterPath = "/register"
	// ProtectedRoot is where authenticated visitors of guest-only routes are sent.
	ProtectedRoot = "/tasks"
)

// Descriptor maps a path to a view and its access classification.
type Descriptor struct {
	Path   string
	View   View
	Access Access
}

// Table is an immutable set of route descriptors keyed by exact path.
type Table struct {
	routes []Descriptor
	byPath map[string]Descriptor
}

// NewTable builds a Table. Duplicate paths are rejected.
func NewTable(routes ...Descriptor) (*Table, error) {
	t := &Table{
		routes: make([]Descriptor, 0, len(routes)),
		byPath: make(map[string]Descriptor, len(routes)),
	}
	for _, d := range routes {
		if d.Path == "" {
			return nil, fmt.Errorf("route for view %q has empty path", d.View)
		}
		if _, dup := t.byPath[d.Path]; dup {
			return nil, fmt.Errorf("duplicate route %q", d.Path)
		}
		t.byPath[d.Path] = d
		t.routes = append(t.routes, d)
	}
	return t, nil
}

// DefaultTable returns the application's route table.
func DefaultTable() *Table {
	t, err := NewTable(
		Descriptor{Path: HomePath, View: ViewHome, Access: Open},
		Descriptor{Path: ProtectedRoot, View: ViewTaskList, Access: RequiresAuth},
		Descriptor{Path: LoginPath, View: ViewLogin, Access: GuestOnly},
		Descriptor{Path: RegisterPath, View: ViewRegister, Access: GuestOnly},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the descriptor registered for path.
func (t *Table) Lookup(path string) (Descriptor, bool) {
	d, ok := t.byPath[path]
	return d, ok
}

// Routes returns the descriptors in registration order.
func (t *Table) Routes() []Descriptor {
	out := make([]Descriptor, len(t.routes))
	copy(out, t.routes)
	return out
}
