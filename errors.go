package connkit

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorCode represents a resolution or connectivity error classification
type ErrorCode string

const (
	CodeMalformedConnectionString ErrorCode = "MALFORMED_CONNECTION_STRING"
	CodeNoTransformerForType      ErrorCode = "NO_TRANSFORMER_FOR_TYPE"
	CodeTransformerFailed         ErrorCode = "TRANSFORMER_FAILED"
	CodeConnectionFailed          ErrorCode = "CONNECTION_FAILED"
	CodeAuthFailed                ErrorCode = "AUTH_FAILED"
	CodeTimeout                   ErrorCode = "TIMEOUT"
	CodeUnknown                   ErrorCode = "UNKNOWN"
)

// Sentinel errors for quick checks
var (
	ErrMalformedConnectionString = errors.New("connkit: malformed connection string")
	ErrNoTransformerForType      = errors.New("connkit: no transformer for connection type")
	ErrTransformer               = errors.New("connkit: connection transformer failed")
	ErrConnection                = errors.New("connkit: connection failed")
	ErrAuth                      = errors.New("connkit: authentication failed")
	ErrTimeout                   = errors.New("connkit: operation timeout")
)

// Error is a rich resolution error with context
type Error struct {
	Code    ErrorCode // Error classification
	Message string    // Human-readable message
	Op      string    // Operation that failed (e.g., "ParseConnectionString", "Open")
	Type    string    // Connection type tag, when the failure involves a transformer
	Detail  string    // Additional detail from PostgreSQL
	Hint    string    // Hint from PostgreSQL
	Cause   error     // Underlying error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("connkit: %s", e.Message)
	if e.Op != "" {
		msg = fmt.Sprintf("connkit.%s: %s", e.Op, e.Message)
	}
	if e.Type != "" {
		msg += fmt.Sprintf(" (type: %s)", e.Type)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for sentinel error matching
func (e *Error) Is(target error) bool {
	switch e.Code {
	case CodeMalformedConnectionString:
		return target == ErrMalformedConnectionString
	case CodeNoTransformerForType:
		return target == ErrNoTransformerForType
	case CodeTransformerFailed:
		return target == ErrTransformer
	case CodeConnectionFailed:
		return target == ErrConnection
	case CodeAuthFailed:
		return target == ErrAuth
	case CodeTimeout:
		return target == ErrTimeout
	}
	return false
}

// wrapError converts a raw error to a rich Error
func wrapError(err error, op string) error {
	if err == nil {
		return nil
	}

	// Already wrapped
	var kitErr *Error
	if errors.As(err, &kitErr) {
		return err
	}

	// PostgreSQL specific errors
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return wrapPgError(pgErr, op)
	}

	return &Error{
		Code:    CodeUnknown,
		Message: err.Error(),
		Op:      op,
		Cause:   err,
	}
}

// wrapPgError converts PostgreSQL errors to rich errors
func wrapPgError(pgErr *pgconn.PgError, op string) *Error {
	e := &Error{
		Op:     op,
		Detail: pgErr.Detail,
		Hint:   pgErr.Hint,
		Cause:  pgErr,
	}

	// Map PostgreSQL error codes
	// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
	switch pgErr.Code {
	case "28000", "28P01": // invalid_authorization_specification, invalid_password
		e.Code = CodeAuthFailed
		e.Message = "database authentication failed"
	case "3D000": // invalid_catalog_name
		e.Code = CodeConnectionFailed
		e.Message = "database does not exist"
	case "57014": // query_canceled (timeout)
		e.Code = CodeTimeout
		e.Message = "operation was cancelled due to timeout"
	case "08000", "08003", "08006": // connection errors
		e.Code = CodeConnectionFailed
		e.Message = "database connection failed"
	default:
		e.Code = CodeUnknown
		e.Message = pgErr.Message
	}

	return e
}

// IsMalformedConnectionString checks if error is a connection-string parse error
func IsMalformedConnectionString(err error) bool {
	return errors.Is(err, ErrMalformedConnectionString)
}

// IsNoTransformerForType checks if error is an unresolved connection type error
func IsNoTransformerForType(err error) bool {
	return errors.Is(err, ErrNoTransformerForType)
}

// IsTransformer checks if error came from a failing transformer
func IsTransformer(err error) bool {
	return errors.Is(err, ErrTransformer)
}

// IsConnection checks if error is a connection error
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsAuth checks if error is an authentication error
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}

// IsTimeout checks if error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// GetErrorCode extracts the error code if it's a connkit error
func GetErrorCode(err error) (ErrorCode, bool) {
	var kitErr *Error
	if errors.As(err, &kitErr) {
		return kitErr.Code, true
	}
	return "", false
}

// UnresolvedType extracts the connection type tag that could not be
// dispatched, if the error carries one
func UnresolvedType(err error) (string, bool) {
	var kitErr *Error
	if errors.As(err, &kitErr) && kitErr.Type != "" {
		return kitErr.Type, true
	}
	return "", false
}

// GetDetail extracts the error detail if available
func GetDetail(err error) (string, bool) {
	var kitErr *Error
	if errors.As(err, &kitErr) && kitErr.Detail != "" {
		return kitErr.Detail, true
	}
	return "", false
}

// GetHint extracts the error hint if available
func GetHint(err error) (string, bool) {
	var kitErr *Error
	if errors.As(err, &kitErr) && kitErr.Hint != "" {
		return kitErr.Hint, true
	}
	return "", false
}
