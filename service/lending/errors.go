package lending

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// errors used by controllers

type ErrCode string

const (
	// ErrNotFound: the referenced game does not exist.
	ErrNotFound ErrCode = "NOT_FOUND"
	// ErrForbidden: the acting user lacks the role the operation requires,
	// or the game is not lendable.
	ErrForbidden ErrCode = "FORBIDDEN"
	// ErrConflict: the requested loan transition is invalid in the current
	// state. Not retryable.
	ErrConflict ErrCode = "CONFLICT"
	// ErrUnavailable: transient storage contention. The caller may retry.
	ErrUnavailable ErrCode = "UNAVAILABLE"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string { return fmt.Sprintf("%s: %s", e.code, e.msg) }
func (e codedError) Code() ErrCode { return e.code }

func makeErr(c ErrCode, format string, args ...any) error {
	return codedError{code: c, msg: fmt.Sprintf(format, args...)}
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// mapStorageErr translates postgres failure modes into the engine's taxonomy.
// A unique violation means a concurrent duplicate borrow won the race; lock
// and serialization failures are transient.
func mapStorageErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return makeErr(ErrConflict, "open loan already exists")
	case pgerrcode.LockNotAvailable, pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return makeErr(ErrUnavailable, "storage contention: %s", pgErr.Code)
	default:
		return err
	}
}
