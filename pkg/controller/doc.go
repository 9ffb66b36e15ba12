// Package controller contains HTTP middlewares and helper handlers used by the dashboard API.
//
// Provided middlewares:
//   - WithCORS: Echoes allowed embedding origins with credentials and handles OPTIONS preflight.
//   - WithLogger: Attaches a request-scoped logger and request ID to the context and logs access info.
//
// Provided helpers:
//   - PprofMux: Returns a ServeMux exposing net/http/pprof handlers under a prefix.
package controller
