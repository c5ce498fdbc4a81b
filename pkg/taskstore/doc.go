/*
Package taskstore persists agent task records on disk, one subtree per
task: <root>/<id>/task.json, plus optional conversation.json, outputs/, and
uploads/.

# Invariants

Once a task's WorkingFolder is non-empty on disk, Upsert rejects any call
that would change or clear it — a task is bound to its working folder for
life; starting over means creating a new task id. List always returns tasks
sorted by UpdatedAt descending, since ISO-8601 timestamps sort
lexicographically in timestamp order.

Writes are not crash-atomic: a process killed mid-write can leave a
partially written task.json. Single-writer use (one controller process per
data directory) is assumed, per the design's open question on this point.
*/
package taskstore
