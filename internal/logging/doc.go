// Package logging builds the slog loggers used across surfacegate and
// standardizes the structured field names components log with. Two handler
// formats are supported: a human-oriented console format for interactive use
// and plain JSON for ingestion.
package logging
