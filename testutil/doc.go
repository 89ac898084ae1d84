// Package testutil drives stateful fixtures through a test's lifetime.
//
// A TestComponent is a component.Component that can also be emptied
// (Reset), captured (Snapshot) and put back (Restore). T wires those calls
// into testing.T so failures stop the test and cleanup runs automatically:
//
//	func TestOrders(t *testing.T) {
//	    h := testutil.T(t)
//	    h.Setup(db)     // started now, stopped at cleanup
//	    h.Isolate(db)   // whatever the test writes is rolled back at cleanup
//	}
//
// Manager starts, resets and stops several components together.
package testutil
