// Package engine hosts a hydra behind an HTTP server.
//
//	┌──────────────┐   ┌─────────────────────────────────────────────┐
//	│ HTTP client  │──▶│ Server.ServeHTTP                            │
//	└──────────────┘   │   X-Request-Id, buffer request              │
//	                   │   ┌───────────── dispatch mutex ──────────┐ │
//	                   │   │ hydra.Dispatch                        │ │
//	                   │   │   *admin* → *dynamic* → *current-test*│ │
//	                   │   │   → configured plugins                │ │
//	                   │   └───────────────────────────────────────┘ │
//	                   │   deliver response, record metrics          │
//	                   └─────────────────────────────────────────────┘
//
// Dispatch, including every admin mutation, runs under one mutex, so heads
// and plugins never see concurrent calls.
//
// Plugins named in the configuration are found by a loader.Loader whose
// load path is the configured one followed by loader.DefaultLoadPath.
package engine
