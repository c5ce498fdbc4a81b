/*
Package log provides structured logging for the VM controller using zerolog.

It wraps zerolog with a package-level Logger, a small Config for level and
output selection, and helper functions for component-scoped child loggers.
All logs carry timestamps and can be filtered by level.

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true, Output: os.Stdout})

	supLog := log.WithComponent("supervisor")
	supLog.Info().Str("session_id", sessionID).Msg("vm starting")

# Design

A single global Logger keeps call sites simple; WithComponent, WithTaskID, and
WithSessionID attach context fields without threading a logger through every
function signature.
*/
package log
