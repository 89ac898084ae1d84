// Package resilience retries operations that fail transiently, such as
// connecting to a database server that is still starting.
//
//	db, err := resilience.Retry(ctx, resilience.RetryConfig{
//	    MaxAttempts:    5,
//	    InitialBackoff: time.Second,
//	}, func() (*gorm.DB, error) {
//	    return gorm.Open(dialector, cfg)
//	})
package resilience
