// Package files discovers the report input tables on disk.
//
// The batch command looks for two tables in its input directory, each either
// a CSV or an XLSX file named after the configured base name:
//
//	discovery := files.NewDiscovery(paths.BaseDir)
//	completion, err := discovery.FindInput("data/input", "prolongations")
//	financial, err := discovery.FindInput("data/input", "financial_data")
//
// When both <base>.csv and <base>.xlsx exist the CSV wins.
package files
