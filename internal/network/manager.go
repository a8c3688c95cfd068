package network

import (
	"context"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Errors returned by snapshot lookup.
var (
	ErrUnknownMode = eris.New("network: unknown travel mode")
	ErrNoSnapshot  = eris.New("network: no snapshot published for mode")
)

// BuildFunc produces a fresh snapshot for one mode. The Manager calls it on
// rebuild and publishes the result only on success.
type BuildFunc func(ctx context.Context, mode string) (*Snapshot, error)

// Manager publishes one immutable snapshot per travel mode via atomic
// pointer swap. Requests read whatever snapshot was current when they
// started; a rebuild never mutates records an in-flight request may be
// reading, it only replaces the pointer.
type Manager struct {
	modes map[string]*atomic.Pointer[Snapshot]
	order []string
}

// NewManager creates a manager for a fixed mode set.
func NewManager(modes []string) *Manager {
	m := &Manager{
		modes: make(map[string]*atomic.Pointer[Snapshot], len(modes)),
		order: append([]string(nil), modes...),
	}
	for _, mode := range modes {
		m.modes[mode] = &atomic.Pointer[Snapshot]{}
	}
	return m
}

// Modes returns the configured mode names in configuration order.
func (m *Manager) Modes() []string {
	return append([]string(nil), m.order...)
}

// Snapshot returns the current snapshot for a mode.
func (m *Manager) Snapshot(mode string) (*Snapshot, error) {
	ptr, ok := m.modes[mode]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownMode, "%q", mode)
	}
	s := ptr.Load()
	if s == nil {
		return nil, eris.Wrapf(ErrNoSnapshot, "%q", mode)
	}
	return s, nil
}

// Publish swaps in a new snapshot for its mode.
func (m *Manager) Publish(s *Snapshot) error {
	ptr, ok := m.modes[s.Mode]
	if !ok {
		return eris.Wrapf(ErrUnknownMode, "%q", s.Mode)
	}
	ptr.Store(s)
	return nil
}

// Rebuild runs the build for one mode and publishes the result. On failure
// the previously published snapshot, if any, stays in service.
func (m *Manager) Rebuild(ctx context.Context, mode string, build BuildFunc) error {
	if _, ok := m.modes[mode]; !ok {
		return eris.Wrapf(ErrUnknownMode, "%q", mode)
	}
	s, err := build(ctx, mode)
	if err != nil {
		zap.L().Error("snapshot rebuild failed, keeping previous snapshot",
			zap.String("mode", mode),
			zap.Error(err),
		)
		return eris.Wrapf(err, "network: rebuild %s", mode)
	}
	return m.Publish(s)
}
