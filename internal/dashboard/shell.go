// Package dashboard holds the per-role dashboard shells and their panel
// selection state.
package dashboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
)

var (
	ErrNoPanels       = errors.New("dashboard: shell needs at least one panel")
	ErrDuplicatePanel = errors.New("dashboard: duplicate panel name")
	ErrUnknownDefault = errors.New("dashboard: default panel is not in the panel list")
	ErrUnknownPanel   = errors.New("dashboard: unknown panel")
	ErrEmptyPanelName = errors.New("dashboard: panel name is empty")
)

// Panel is one selectable pane. Panels without an Endpoint render static
// content instead of backend data.
type Panel struct {
	Name     string
	Title    string
	Endpoint string
}

// Static reports whether the panel has no backing read endpoint.
func (p Panel) Static() bool {
	return p.Endpoint == ""
}

// Shell holds the active panel for one mounted dashboard. The panel list
// is fixed at construction.
type Shell struct {
	role         auth.Role
	panels       []Panel
	index        map[string]int
	defaultPanel string

	mu     sync.Mutex
	active string
}

// NewShell validates the panel list and returns a shell with the default
// panel active.
func NewShell(role auth.Role, panels []Panel, defaultPanel string) (*Shell, error) {
	if len(panels) == 0 {
		return nil, ErrNoPanels
	}

	index := make(map[string]int, len(panels))
	for i, p := range panels {
		if p.Name == "" {
			return nil, ErrEmptyPanelName
		}
		if _, dup := index[p.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePanel, p.Name)
		}
		index[p.Name] = i
	}
	if _, ok := index[defaultPanel]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDefault, defaultPanel)
	}

	return &Shell{
		role:         role,
		panels:       append([]Panel(nil), panels...),
		index:        index,
		defaultPanel: defaultPanel,
		active:       defaultPanel,
	}, nil
}

// MustShell is NewShell for fixed layouts known at compile time.
func MustShell(role auth.Role, panels []Panel, defaultPanel string) *Shell {
	s, err := NewShell(role, panels, defaultPanel)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Shell) Role() auth.Role {
	return s.role
}

// Panels returns the ordered panel list.
func (s *Shell) Panels() []Panel {
	return append([]Panel(nil), s.panels...)
}

// Default returns the name of the default panel.
func (s *Shell) Default() string {
	return s.defaultPanel
}

// Active returns the currently selected panel.
func (s *Shell) Active() Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panels[s.index[s.active]]
}

// Select makes name the active panel. Unlisted names are rejected and the
// selection is left unchanged.
func (s *Shell) Select(name string) error {
	if _, ok := s.index[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPanel, name)
	}
	s.mu.Lock()
	s.active = name
	s.mu.Unlock()
	return nil
}

// Reset returns the shell to its default panel.
func (s *Shell) Reset() {
	s.mu.Lock()
	s.active = s.defaultPanel
	s.mu.Unlock()
}

// Tab is one navigation entry of a rendered shell.
type Tab struct {
	Name   string
	Title  string
	Active bool
}

// View is the render model of a shell: every tab, with exactly one active.
type View struct {
	Role   auth.Role
	Tabs   []Tab
	Active Panel
}

// View snapshots the shell for rendering.
func (s *Shell) View() View {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()

	tabs := make([]Tab, len(s.panels))
	for i, p := range s.panels {
		tabs[i] = Tab{Name: p.Name, Title: p.Title, Active: p.Name == active}
	}
	return View{
		Role:   s.role,
		Tabs:   tabs,
		Active: s.panels[s.index[active]],
	}
}
