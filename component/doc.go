// Package component defines the lifecycle interface shared by database
// connections and test fixtures.
//
// A Component is started once, reports its health while running and is
// stopped when the owner is done with it. Components that implement
// Describable also summarize their configuration for log output.
package component
