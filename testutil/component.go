package testutil

import (
	"context"

	"github.com/kbukum/dbunit/component"
)

// TestComponent is a component whose state tests can reset and restore.
type TestComponent interface {
	component.Component

	// Reset returns the component to its empty baseline.
	Reset(ctx context.Context) error

	// Snapshot captures the current state for a later Restore.
	Snapshot(ctx context.Context) (any, error)

	// Restore replaces the current state with a value returned by Snapshot.
	Restore(ctx context.Context, snapshot any) error
}
