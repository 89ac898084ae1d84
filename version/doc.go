// Package version reports the build version of the dbunit command.
//
// Version and commit are set at compile time via -ldflags and otherwise
// read from the module build info:
//
//	go build -ldflags "-X github.com/kbukum/dbunit/version.Version=1.0.0" ./cmd/dbunit
package version
