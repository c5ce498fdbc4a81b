/*
Package history is an ambient diagnostics addition: it records what the
supervisor already knows about each session (start and stop timestamps
plus a terminal error string) into a small append-only BoltDB log, one
bucket with JSON-marshaled values keyed by insertion sequence. Entry has a
ReadyAt field, but the supervisor does not fill it in: it appends when a
session starts and when it stops, not when it becomes ready.

Append upserts by SessionID rather than blindly inserting, so a session's
appends collapse into one row, each overwriting the whole entry.
*/
package history
