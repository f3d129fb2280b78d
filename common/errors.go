package common

import "github.com/pkg/errors"

// Kind classifies an error for dispatch purposes, per spec.md §7. It is
// never used for string matching — callers branch on the Kind value.
type Kind int

const (
	// KindInitialization covers missing config, a bad KV directory, or an
	// unreachable store. Fatal at startup.
	KindInitialization Kind = iota
	// KindTransient covers RPC/MQ/store network errors. Logged and retried
	// by the owning loop's natural cadence.
	KindTransient
	// KindDecode covers a malformed block or MQ body.
	KindDecode
	// KindIntegrity covers duplicate detection/confirmation attempts that
	// are swallowed by a uniqueness or idempotence guard.
	KindIntegrity
	// KindLogic covers internal inconsistencies, e.g. a cache hit whose
	// metadata read came back empty.
	KindLogic
)

func (k Kind) String() string {
	switch k {
	case KindInitialization:
		return "initialization"
	case KindTransient:
		return "transient"
	case KindDecode:
		return "decode"
	case KindIntegrity:
		return "integrity"
	case KindLogic:
		return "logic"
	default:
		return "unknown"
	}
}

// Error is a typed-kind error wrapping an underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap builds a typed Error, attaching a stack via pkg/errors so the
// original call site survives in logs.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: errors.WithStack(err)}
}

// KindOf extracts the Kind of err if it (or something it wraps) is an
// *Error, defaulting to KindTransient for unclassified errors so that
// callers err on the side of retrying rather than aborting.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransient
}
