// Package dataset reads the two input tables of a prolongation run, the completion
// table and the financial table, from CSV or XLSX sources and converts them into
// engine rows.
//
// A Table is format-neutral: a trimmed header plus string cells. CompletionRows and
// FinancialRows map a Table onto prolongation.ProjectRecord and
// prolongation.FinancialRow, normalizing month names and monetary cells on the way.
// Structural problems (no rows, a required column missing) are reported as parsing
// errors; cell-level mess never is.
package dataset
