// Package handlers contains the HTTP server's supporting pieces: health
// aggregation for the /health and /ready endpoints, and API key
// authentication for mutating endpoints.
//
// # Health Checks
//
// CompositeHealthChecker runs named probes in parallel and reports the
// worst result:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCheck("database", handlers.NewDatabaseCheck(db))
//	checker.AddCheck("cache", handlers.NewCacheCheck(cache))
//	checker.AddCheck("summarizer", handlers.NewSummarizerCheck(geminiClient))
//
//	status := checker.Check(ctx)
//	if !status.Healthy {
//	    log.Printf("Health check failed: %s", status.Message)
//	}
//
// # Authentication
//
// APIKeyAuth accepts keys from the configured header or an Authorization
// Bearer header. Configured keys may be plain strings or bcrypt hashes, so
// production configs never store keys in the clear:
//
//	auth := handlers.NewAPIKeyAuth("X-API-Key", []string{"$2a$10$..."})
//	protected := auth.Middleware(myHandler)
package handlers
