package jobstore

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorKind is the class of a remote failure. It decides whether an insert
// falls back to local storage.
type ErrorKind int

const (
	// KindOther is any database error that is not recognised, or a reply
	// that could not be read; it is surfaced to the caller and never falls
	// back.
	KindOther ErrorKind = iota
	// KindUnreachable covers transport failures: dial errors, timeouts,
	// closed pools, a store with no remote configured.
	KindUnreachable
	// KindSchemaMismatch is a missing table or an unknown column.
	KindSchemaMismatch
	// KindAccessDenied is a write rejected by privileges or row-level security.
	KindAccessDenied
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindSchemaMismatch:
		return "schema_mismatch"
	case KindAccessDenied:
		return "access_denied"
	default:
		return "other"
	}
}

// PostgreSQL SQLSTATE codes the store reacts to.
const (
	codeUndefinedTable        = "42P01"
	codeUndefinedColumn       = "42703"
	codeInsufficientPrivilege = "42501"
)

// Messages attached to fallback results.
const (
	MsgDemoMode         = "Saved to local storage in demo mode."
	MsgMissingTable     = "Table does not exist in database. Using local storage until fixed."
	MsgColumnMismatch   = "Table columns don't match the data. Using local storage until fixed."
	MsgAccessRestricted = "Database access restricted. Using local storage until fixed."
)

var (
	// ErrUnavailable is returned when no remote database is configured.
	ErrUnavailable = errors.New("remote job store unavailable")
	// ErrFallbackFailed is returned when the local store could not save
	// a record that the remote refused.
	ErrFallbackFailed = errors.New("failed to save data even in fallback mode")
)

// RemoteError is a classified failure of the remote job store.
type RemoteError struct {
	Kind ErrorKind
	// Code is the SQLSTATE, empty for transport failures.
	Code string
	// Column names the unknown column of a schema mismatch, when known.
	Column string
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote %s (%s): %v", e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("remote %s: %v", e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// MissingTable reports whether the target relation does not exist.
func (e *RemoteError) MissingTable() bool { return e.Code == codeUndefinedTable }

// FallbackMessage is the user-facing message for a fallback caused by e.
func (e *RemoteError) FallbackMessage() string {
	switch e.Kind {
	case KindSchemaMismatch:
		if e.MissingTable() {
			return MsgMissingTable
		}
		return MsgColumnMismatch
	case KindAccessDenied:
		return MsgAccessRestricted
	default:
		return MsgDemoMode
	}
}

var (
	pgColumnRe   = regexp.MustCompile(`column "([^"]+)"`)
	restColumnRe = regexp.MustCompile(`'([^']+)' column`)
)

// Classify turns an error from the remote into a *RemoteError.
//
// A row that came back but could not be scanned means the statement already
// ran on the server; it is KindOther so an insert is not written a second
// time locally. Any other error that is not a PostgreSQL error is a transport
// failure. A connection lost after the server committed but before the reply
// arrived is indistinguishable from one lost before, so such an insert can
// end up both remote and local.
func Classify(err error) *RemoteError {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re
	}

	var scanErr pgx.ScanArgError
	if errors.As(err, &scanErr) {
		return &RemoteError{Kind: KindOther, Err: err}
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return &RemoteError{Kind: KindUnreachable, Err: err}
	}

	re = &RemoteError{Kind: KindOther, Code: pgErr.Code, Err: err}
	msg := strings.ToLower(pgErr.Message)
	switch {
	case pgErr.Code == codeUndefinedTable:
		re.Kind = KindSchemaMismatch
	case pgErr.Code == codeUndefinedColumn:
		re.Kind = KindSchemaMismatch
		re.Column = missingColumn(pgErr)
	case pgErr.Code == codeInsufficientPrivilege, strings.Contains(msg, "row-level security"):
		re.Kind = KindAccessDenied
	}
	return re
}

func missingColumn(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := pgColumnRe.FindStringSubmatch(pgErr.Message); m != nil {
		return m[1]
	}
	if m := restColumnRe.FindStringSubmatch(pgErr.Message); m != nil {
		return m[1]
	}
	return ""
}
