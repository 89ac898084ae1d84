package testutil

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Manager runs the lifecycle of several test components together.
// Components start in the order they were added and stop in reverse.
type Manager struct {
	ctx        context.Context
	mu         sync.RWMutex
	components []TestComponent
}

// NewManager creates an empty manager.
func NewManager(ctx context.Context) *Manager {
	return &Manager{ctx: ctx}
}

// Add registers components.
func (m *Manager) Add(components ...TestComponent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, components...)
}

// Components returns the registered components in order.
func (m *Manager) Components() []TestComponent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.components)
}

// Get returns the component called name, or nil.
func (m *Manager) Get(name string) TestComponent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// StartAll starts every component, stopping at the first failure.
func (m *Manager) StartAll() error {
	return m.each("start", func(c TestComponent) error { return c.Start(m.ctx) })
}

// ResetAll resets every component, stopping at the first failure.
func (m *Manager) ResetAll() error {
	return m.each("reset", func(c TestComponent) error { return c.Reset(m.ctx) })
}

// StopAll stops every component in reverse order and joins the failures.
func (m *Manager) StopAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for _, c := range slices.Backward(m.components) {
		if err := c.Stop(m.ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop component %s: %w", c.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// SnapshotAll captures every component, keyed by name.
func (m *Manager) SnapshotAll() (map[string]any, error) {
	out := make(map[string]any)
	err := m.each("snapshot", func(c TestComponent) error {
		s, err := c.Snapshot(m.ctx)
		out[c.Name()] = s
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RestoreAll restores every component that has an entry in snapshots.
func (m *Manager) RestoreAll(snapshots map[string]any) error {
	return m.each("restore", func(c TestComponent) error {
		s, ok := snapshots[c.Name()]
		if !ok {
			return nil
		}
		return c.Restore(m.ctx, s)
	})
}

func (m *Manager) each(op string, fn func(TestComponent) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.components {
		if err := fn(c); err != nil {
			return fmt.Errorf("failed to %s component %s: %w", op, c.Name(), err)
		}
	}
	return nil
}
