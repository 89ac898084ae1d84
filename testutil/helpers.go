package testutil

import (
	"context"
	"testing"
)

// CleanupFunc stops what a Setup call started.
type CleanupFunc func() error

// Setup starts component and returns the function that stops it.
func Setup(ctx context.Context, component TestComponent) (CleanupFunc, error) {
	if err := component.Start(ctx); err != nil {
		return nil, err
	}
	return func() error { return component.Stop(ctx) }, nil
}

// THelper binds component lifecycle calls to a test.
type THelper struct {
	t   testing.TB
	ctx context.Context
}

// T wraps t. Every helper failure calls t.Fatalf.
func T(t testing.TB) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets the context passed to components.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts component and stops it when the test ends.
func (h *THelper) Setup(component TestComponent) {
	h.t.Helper()
	if err := component.Start(h.ctx); err != nil {
		h.t.Fatalf("failed to start component %s: %v", component.Name(), err)
	}
	h.t.Cleanup(func() {
		if err := component.Stop(h.ctx); err != nil {
			h.t.Errorf("failed to stop component %s: %v", component.Name(), err)
		}
	})
}

// Reset empties component.
func (h *THelper) Reset(component TestComponent) {
	h.t.Helper()
	if err := component.Reset(h.ctx); err != nil {
		h.t.Fatalf("failed to reset component %s: %v", component.Name(), err)
	}
}

// Snapshot captures component's state.
func (h *THelper) Snapshot(component TestComponent) any {
	h.t.Helper()
	snapshot, err := component.Snapshot(h.ctx)
	if err != nil {
		h.t.Fatalf("failed to snapshot component %s: %v", component.Name(), err)
	}
	return snapshot
}

// Restore puts back a state captured by Snapshot.
func (h *THelper) Restore(component TestComponent, snapshot any) {
	h.t.Helper()
	if err := component.Restore(h.ctx, snapshot); err != nil {
		h.t.Fatalf("failed to restore component %s: %v", component.Name(), err)
	}
}

// Isolate snapshots component now and restores the snapshot when the test
// ends, undoing whatever the test changed.
func (h *THelper) Isolate(component TestComponent) {
	h.t.Helper()
	snapshot := h.Snapshot(component)
	h.t.Cleanup(func() {
		if err := component.Restore(h.ctx, snapshot); err != nil {
			h.t.Errorf("failed to restore component %s: %v", component.Name(), err)
		}
	})
}
