// Package apperr defines the error kinds surfaced by the VM controller's
// public operations, per the design's error handling policy: synchronous
// operations return one of these kinds directly, wrapped with context via
// fmt.Errorf("...: %w", ...), so callers can classify failures with
// errors.Is/errors.As without parsing message strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. Do not add more without updating every
// dispatcher that switches on these sentinels.
type Kind string

const (
	Validation         Kind = "validation"
	NotFound           Kind = "not_found"
	InvariantViolation Kind = "invariant_violation"
	VmNotRunning       Kind = "vm_not_running"
	RpcNotConnected    Kind = "rpc_not_connected"
	IO                 Kind = "io"
	Parse              Kind = "parse"
)

// Sentinel errors for errors.Is comparisons; they match any *Error or Wrap
// result of the same Kind.
var (
	ErrValidation         = &Error{Kind: Validation, Message: "validation error"}
	ErrNotFound           = &Error{Kind: NotFound, Message: "not found"}
	ErrInvariantViolation = &Error{Kind: InvariantViolation, Message: "invariant violation"}
	ErrVmNotRunning       = &Error{Kind: VmNotRunning, Message: "vm not running"}
	ErrRpcNotConnected    = &Error{Kind: RpcNotConnected, Message: "rpc not connected"}
	ErrIO                 = &Error{Kind: IO, Message: "io error"}
	ErrParse              = &Error{Kind: Parse, Message: "parse error"}
)

// Error is a classified, user-presentable error. Message must never leak
// secrets (API keys, tokens) — callers constructing one from raw input
// should pass only stable, scrubbed phrasing.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error with the same Kind, so that
// errors.Is(err, apperr.ErrNotFound) works through wrapping.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// New constructs a new *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an existing error as kind, preserving it in the chain so
// errors.Unwrap still reaches the original cause.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, &wrapped{kind: kind, cause: err})
}

type wrapped struct {
	kind  Kind
	cause error
}

func (w *wrapped) Error() string { return w.cause.Error() }
func (w *wrapped) Unwrap() error { return w.cause }
func (w *wrapped) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return w.kind == other.Kind
	}
	return false
}
