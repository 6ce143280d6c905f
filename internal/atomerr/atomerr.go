// Package atomerr defines the core's five error kinds (§7) as sentinel
// errors, wrapped with context via fmt.Errorf("...: %w", ...) the same way
// the teacher's internal/store wraps sqlite and I/O failures — no
// third-party errors package is substituted here; the teacher itself never
// reaches for one, using only stdlib wrapping throughout internal/store and
// internal/world.
package atomerr

import "errors"

// Kind is one of the five error kinds named in spec §7.
type Kind string

const (
	KindChunkNotFound       Kind = "chunk_not_found"
	KindAtomizerError       Kind = "atomizer_error"
	KindStorageError        Kind = "storage_error"
	KindUnsupportedLanguage Kind = "unsupported_language"
	KindInvalidInput        Kind = "invalid_input"
)

// Sentinel errors for errors.Is comparisons.
var (
	ErrChunkNotFound       = errors.New("chunk not found")
	ErrAtomizerError       = errors.New("atomizer error")
	ErrStorageError        = errors.New("storage error")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidInput        = errors.New("invalid input")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindChunkNotFound:
		return ErrChunkNotFound
	case KindAtomizerError:
		return ErrAtomizerError
	case KindStorageError:
		return ErrStorageError
	case KindUnsupportedLanguage:
		return ErrUnsupportedLanguage
	case KindInvalidInput:
		return ErrInvalidInput
	default:
		return errors.New("unknown error kind")
	}
}

// Error wraps a Kind with context, supporting errors.Is(err, atomerr.ErrX)
// and errors.Unwrap for any wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return sentinelFor(e.Kind)
}

func (e *Error) Is(target error) bool {
	return target == sentinelFor(e.Kind)
}

// New builds an *Error of the given kind with a formatted message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error of the given kind, chaining cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// ChunkNotFound builds a ChunkNotFound error for the given id.
func ChunkNotFound(chunkID string) *Error {
	return New(KindChunkNotFound, "chunk not found: "+chunkID)
}
