// Package logger provides structured logging for dbunit using zerolog.
//
// Loggers are component-scoped: the purger, the session and the database
// wrapper each tag their events so a failing test's output can be traced
// back to the stage that produced it.
//
// # Configuration
//
//	logging:
//	  level: "warn"
//	  format: "console"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.NewDefault("dbunit").WithComponent("purger")
//	log.Info("Sequences reset", logger.Fields("count", 3))
package logger
