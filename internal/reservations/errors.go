package reservations

import (
	"context"
	"errors"
	"fmt"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind is the client-visible error category. Kinds are errors themselves so
// callers can write errors.Is(err, ErrConflict).
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	ErrInvalidRequest   Kind = "InvalidRequest"
	ErrNoAvailability   Kind = "NoAvailability"
	ErrConflict         Kind = "Conflict"
	ErrAlreadyTerminal  Kind = "AlreadyTerminal"
	ErrAllocationFailed Kind = "AllocationFailed"
	ErrNotFound         Kind = "NotFound"
	ErrForbidden        Kind = "Forbidden"

	// ErrTimeout is matched alongside ErrAllocationFailed when the lock wait or commit ran out of time.
	ErrTimeout Kind = "Timeout"
)

// Reason refines NoAvailability and AllocationFailed.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonSpotNotFound  Reason = "SpotNotFound"
	ReasonWrongLocation Reason = "WrongLocation"
	ReasonMaintenance   Reason = "UnderMaintenance"
	ReasonZoneExhausted Reason = "ZoneExhausted"
	ReasonOverlap       Reason = "Overlap"
	ReasonTimeout       Reason = "Timeout"
	ReasonStorage       Reason = "Storage"
)

type Error struct {
	Kind   Kind
	Reason Reason
	Detail string
	cause  error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Reason == ReasonTimeout {
		errs = append(errs, ErrTimeout)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// Transient reports whether one more attempt may succeed.
func (e *Error) Transient() bool {
	return e.Kind == ErrAllocationFailed && e.Reason == ReasonStorage
}

func newError(kind Kind, reason Reason, detail string) *Error {
	return &Error{Kind: kind, Reason: reason, Detail: detail}
}

func invalid(format string, args ...any) *Error {
	return newError(ErrInvalidRequest, ReasonNone, fmt.Sprintf(format, args...))
}

func noAvailability(reason Reason, detail string) *Error {
	return newError(ErrNoAvailability, reason, detail)
}

// AsError extracts the *Error from err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// classify turns whatever escaped a ledger transaction into an *Error.
// Domain errors pass through; driver errors are mapped by code.
func classify(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := AsError(err); ok {
		return e
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: ErrAllocationFailed, Reason: ReasonTimeout, Detail: "timed out waiting for the spot", cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: ErrAllocationFailed, Reason: ReasonTimeout, Detail: "request cancelled", cause: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &Error{Kind: ErrConflict, Reason: ReasonOverlap, Detail: "concurrent reservation won the spot", cause: err}
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1213, 1062: // deadlock, duplicate key
			return &Error{Kind: ErrConflict, Reason: ReasonOverlap, Detail: "concurrent reservation won the spot", cause: err}
		case 1205: // lock wait timeout
			return &Error{Kind: ErrAllocationFailed, Reason: ReasonTimeout, Detail: "timed out waiting for the spot", cause: err}
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "23505", "23P01": // serialization, deadlock, unique, exclusion
			return &Error{Kind: ErrConflict, Reason: ReasonOverlap, Detail: "concurrent reservation won the spot", cause: err}
		case "55P03", "57014": // lock not available, query cancelled
			return &Error{Kind: ErrAllocationFailed, Reason: ReasonTimeout, Detail: "timed out waiting for the spot", cause: err}
		}
	}

	return &Error{Kind: ErrAllocationFailed, Reason: ReasonStorage, Detail: "reservation store unavailable", cause: err}
}
