// Package logging wraps log/slog construction for the dripfeed daemon and CLI.
//
// New builds a logger writing to stdout and, when a log directory is
// configured, a dripfeed.log file alongside it. Attr aliases and field-name
// constants keep log records consistent across components; NewComponentLogger
// tags every record from one component with a shared attribute so a single
// delivery can be traced across the scheduler, pipeline, and transport.
package logging
