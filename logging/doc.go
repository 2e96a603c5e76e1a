// Package logging provides a minimal logging interface and adapters for
// AgentTeam.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the scheduler and agents use for observability. This
// package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - TeamLogger with contextual helpers for turns, runs and model calls
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	tm, err := team.New(agents, team.WithLogger(logger))
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
