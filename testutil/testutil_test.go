package testutil_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kbukum/dbunit/component"
	"github.com/kbukum/dbunit/testutil"
)

// counter is a TestComponent whose state is a single integer.
type counter struct {
	name    string
	value   int
	started bool
	log     *[]string
	failOn  string
}

func newCounter(name string, log *[]string) *counter {
	return &counter{name: name, log: log}
}

func (c *counter) record(op string) error {
	if c.log != nil {
		*c.log = append(*c.log, c.name+":"+op)
	}
	if c.failOn == op {
		return errors.New(op + " failed")
	}
	return nil
}

func (c *counter) Name() string { return c.name }

func (c *counter) Start(context.Context) error {
	if err := c.record("start"); err != nil {
		return err
	}
	c.started = true
	return nil
}

func (c *counter) Stop(context.Context) error {
	if err := c.record("stop"); err != nil {
		return err
	}
	c.started = false
	return nil
}

func (c *counter) Health(context.Context) component.Health {
	if !c.started {
		return component.Health{Name: c.name, Status: component.StatusUnhealthy}
	}
	return component.Health{Name: c.name, Status: component.StatusHealthy}
}

func (c *counter) Reset(context.Context) error {
	if err := c.record("reset"); err != nil {
		return err
	}
	c.value = 0
	return nil
}

func (c *counter) Snapshot(context.Context) (any, error) {
	return c.value, c.record("snapshot")
}

func (c *counter) Restore(_ context.Context, s any) error {
	if err := c.record("restore"); err != nil {
		return err
	}
	c.value = s.(int)
	return nil
}

func TestSetup(t *testing.T) {
	c := newCounter("db", nil)
	cleanup, err := testutil.Setup(context.Background(), c)
	if err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}
	if !c.Health(context.Background()).Healthy() {
		t.Error("component should be started")
	}
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup() failed: %v", err)
	}
	if c.started {
		t.Error("component should be stopped after cleanup")
	}
}

func TestSetup_StartFailure(t *testing.T) {
	c := newCounter("db", nil)
	c.failOn = "start"
	if _, err := testutil.Setup(context.Background(), c); err == nil {
		t.Error("Setup() should fail when Start fails")
	}
}

func TestTHelper(t *testing.T) {
	c := newCounter("db", nil)

	t.Run("inner", func(t *testing.T) {
		h := testutil.T(t)
		h.Setup(c)
		c.value = 5
		h.Isolate(c)
		c.value = 9

		snap := h.Snapshot(c)
		h.Reset(c)
		if c.value != 0 {
			t.Errorf("value after Reset = %d, want 0", c.value)
		}
		h.Restore(c, snap)
		if c.value != 9 {
			t.Errorf("value after Restore = %d, want 9", c.value)
		}
	})

	if c.started {
		t.Error("Setup should stop the component at cleanup")
	}
	if c.value != 5 {
		t.Errorf("Isolate should restore value 5, got %d", c.value)
	}
}

func TestManager(t *testing.T) {
	var log []string
	a, b := newCounter("a", &log), newCounter("b", &log)
	m := testutil.NewManager(context.Background())
	m.Add(a, b)

	if m.Get("b") != b || m.Get("c") != nil {
		t.Error("Get() returned the wrong component")
	}
	if len(m.Components()) != 2 {
		t.Errorf("Components() = %d, want 2", len(m.Components()))
	}

	if err := m.StartAll(); err != nil {
		t.Fatal(err)
	}
	a.value, b.value = 1, 2
	snaps, err := m.SnapshotAll()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.ResetAll(); err != nil {
		t.Fatal(err)
	}
	if err := m.RestoreAll(snaps); err != nil {
		t.Fatal(err)
	}
	if a.value != 1 || b.value != 2 {
		t.Errorf("values after RestoreAll = %d, %d", a.value, b.value)
	}
	if err := m.StopAll(); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"a:start", "b:start",
		"a:snapshot", "b:snapshot",
		"a:reset", "b:reset",
		"a:restore", "b:restore",
		"b:stop", "a:stop",
	}
	if !slices.Equal(log, want) {
		t.Errorf("calls = %v, want %v", log, want)
	}
}

func TestManager_StopAllJoinsErrors(t *testing.T) {
	a, b := newCounter("a", nil), newCounter("b", nil)
	a.failOn, b.failOn = "stop", "stop"
	m := testutil.NewManager(context.Background())
	m.Add(a, b)

	err := m.StopAll()
	if err == nil {
		t.Fatal("StopAll() should fail")
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 2 {
		t.Errorf("StopAll() = %v, want both failures", err)
	}
}

func TestManager_StartAllStopsAtFirstFailure(t *testing.T) {
	var log []string
	a, b := newCounter("a", &log), newCounter("b", &log)
	a.failOn = "start"
	m := testutil.NewManager(context.Background())
	m.Add(a, b)

	if err := m.StartAll(); err == nil {
		t.Fatal("StartAll() should fail")
	}
	if slices.Contains(log, "b:start") {
		t.Error("b should not start after a failed")
	}
}
