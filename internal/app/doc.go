// Package app wires the report server together: configuration, logging,
// OpenTelemetry, services, the chi router and the HTTP server lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, the YAML file and PROLONG_* variables
//	2. Initialize logging and resolve paths next to the executable
//	3. Initialize tracing and the Prometheus-backed meter
//	4. Create the report and health services
//	5. Set up middleware and routes
//	6. Serve until SIGINT/SIGTERM, then shut down gracefully
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Tests build the application with New, passing a configuration and a
// temporary base directory.
package app
