// Package services implements the application layer between the transports
// (batch command, HTTP handlers) and the prolongation engine.
//
// ReportService owns one report run end to end:
//
//	1. Validate the two input files (batch) or upload names (HTTP)
//	2. Load the completion and financial tables concurrently
//	3. Convert table rows into engine records
//	4. Run the engine under a trace span
//	5. Record run metrics and, on request, write the workbook and CSV exports
//
// Collaborator failures surface as *errors.AppError values tagged with the
// table they concern, so transports can map them to exit codes or HTTP
// problem responses. The engine itself never fails on messy data.
//
// HealthService answers liveness, readiness and version probes.
package services
