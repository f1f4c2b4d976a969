package dashboard

import (
	"sync"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
)

// Selections keeps one visitor's mounted shells. Shells are never shared
// between visitors.
type Selections struct {
	mu     sync.Mutex
	shells map[auth.Role]*Shell
}

func NewSelections() *Selections {
	return &Selections{shells: make(map[auth.Role]*Shell)}
}

// Shell returns the mounted shell for role, mounting it on first use.
func (s *Selections) Shell(role auth.Role) *Shell {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.shells[role]
	if !ok {
		sh = NewRoleShell(role)
		s.shells[role] = sh
	}
	return sh
}

// Reset unmounts every shell so the next visit starts on the default panel.
// Called after login, logout and role changes.
func (s *Selections) Reset() {
	s.mu.Lock()
	clear(s.shells)
	s.mu.Unlock()
}
