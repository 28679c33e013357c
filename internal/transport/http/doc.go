// Package http implements the HTTP handlers of the report server.
// Handlers stay thin: they parse and validate the request, call a service
// and render the result. Failures are answered as RFC 7807 problem details
// through errors.ErrorHandler.
//
// Routes:
//
//	POST /api/reports          multipart upload of the completion and financial
//	                           tables (CSV or XLSX); format=json|xlsx
//	GET  /api/health           liveness summary
//	GET  /api/health/ready     503 until input and reports directories are usable
//	GET  /api/health/live      runtime details
//	GET  /api/version          build information
//	GET  /metrics              Prometheus exposition
//
// Handlers are tested with httptest against a chi router.
package http
