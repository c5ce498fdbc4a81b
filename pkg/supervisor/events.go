package supervisor

// EventSink is the shell-facing capability the watcher publishes to:
// ready, rpc, and error events, each a named event with a string payload.
// Injected so tests can supply an in-memory fake instead of a real shell
// bridge.
type EventSink interface {
	Emit(event string, payload string)
}

const (
	EventReady = "ready"
	EventRPC   = "rpc"
	EventError = "error"
)

// NoopSink discards every event. Useful as a default when the caller does
// not care about notifications (e.g. CLI one-shot commands).
type NoopSink struct{}

// Emit implements EventSink.
func (NoopSink) Emit(string, string) {}

// FuncSink adapts a plain function to EventSink.
type FuncSink func(event, payload string)

// Emit implements EventSink.
func (f FuncSink) Emit(event, payload string) { f(event, payload) }
