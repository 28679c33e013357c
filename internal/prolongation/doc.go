// Package prolongation computes client retention ("prolongation") coefficients for
// account managers from project completion records and monthly shipment series.
//
// # Pipeline
//
// The engine is a forward-only batch pipeline. Every stage is a pure function that
// consumes the complete output of its predecessor:
//
//  1. Normalize          raw cell text -> Amount (number, zero or STOP)
//  2. AggregateFinancial duplicate financial rows summed per trimmed id
//  3. JoinProjects       completion records left-joined onto the aggregated series
//  4. FilterStopped      projects stopped at or before completion are excluded
//  5. Reshape            wide monthly columns -> one Observation per project and month
//  6. CalculateCoefficients  K1/K2 per manager and for the whole department
//  7. AggregateAnnual    yearly K1/K2 from the per-project detail rows
//
// Engine.Run wires the stages together, adds tracing and logging, and assembles the
// four report tables (annual, monthly pivot, flat monthly summary, project detail).
//
// # Coefficients
//
// For target month M, K1 compares shipments in M against shipments in M-1 for the
// projects completed in M-1. K2 does the same two months back for the projects
// completed in M-2 that did not ship anything in M-1. Department totals are weighted
// (sum of prolongations over sum of bases), never the mean of per-manager values.
// A zero base always yields a coefficient of exactly 0.
//
// # Usage
//
//	engine := prolongation.NewEngine(logger)
//	report, err := engine.Run(ctx, prolongation.Input{
//	    Projects:  completionRecords,
//	    Financial: financialRows,
//	})
package prolongation
