// Package ids provides the identifier generators injected into the workbench.
package ids

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator hands out identifiers that are unique for its lifetime.
type Generator interface {
	NewID() string
}

// UUID generates random v4 UUID strings.
type UUID struct{}

func (UUID) NewID() string {
	return uuid.NewString()
}

// Sequence generates "<prefix>-<n>" identifiers from a monotonically
// increasing counter. It is safe for concurrent use.
type Sequence struct {
	prefix string
	next   atomic.Uint64
}

// NewSequence returns a Sequence whose first identifier uses start.
func NewSequence(prefix string, start uint64) *Sequence {
	s := &Sequence{prefix: prefix}
	s.next.Store(start)
	return s
}

func (s *Sequence) NewID() string {
	n := s.next.Add(1) - 1
	if s.prefix == "" {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s-%d", s.prefix, n)
}

// Func adapts a plain function to Generator.
type Func func() string

func (f Func) NewID() string {
	return f()
}
