// Package shared holds helpers used across packages that belong to no single
// layer. Its testutil subpackage provides a log-capturing slog handler and the
// input table fixtures shared by the engine, service, transport and command
// tests.
package shared
