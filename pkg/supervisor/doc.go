/*
Package supervisor is the VM supervisor: a single instance slot plus a
status tag, each behind its own lock (slot-then-status acquisition order,
never held across a blocking call), a watcher goroutine that owns the
readiness handshake and RPC read loop, and a qemu argv builder grounded on
govmm's device-driver naming.

Start is idempotent while a session is live, Stop is idempotent at any
time, and Send fails fast rather than blocking for a writer to appear. The
watcher is the sole producer of ready/rpc/error events and always tears
down through markStopped, so status monotonically goes
Stopped -> Starting -> Ready -> Stopped within one session.
*/
package supervisor
