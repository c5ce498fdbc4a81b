/*
Package types holds the JSON-serializable records exchanged between the
manifest loader, task store, credential store, preview facade, and VM
supervisor.

Field names follow the wire formats fixed by the on-disk layout: snake_case
JSON keys for persisted records (task.json, auth.json), matching what the
guest agent and desktop shell already expect on disk.
*/
package types
