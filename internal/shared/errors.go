package shared

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrNotAuthenticated indicates a write attempted without a current actor.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrPermissionDenied indicates the backing store rejected the caller.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// MsgPermissionDenied is shown when the store refuses an operation.
const MsgPermissionDenied = "Anda tidak memiliki izin untuk melakukan operasi ini. Silakan login ulang atau hubungi admin."

// MsgNotAuthenticated is shown when a write happens without a signed-in user.
const MsgNotAuthenticated = "Anda harus login terlebih dahulu"

// UserError carries a localized message safe to show to the operator while
// keeping the underlying cause for errors.Is/As.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) Unwrap() error { return e.Err }

// NotAuthenticated returns the error raised before any write when no actor
// is present.
func NotAuthenticated() error {
	return &UserError{Message: MsgNotAuthenticated, Err: ErrNotAuthenticated}
}

// StoreError converts a persistence failure into a user-facing error. prefix
// is the localized description of the failed operation, e.g. "Gagal
// menambahkan item". Permission failures get a fixed message; everything else
// keeps the original message after the prefix.
func StoreError(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var userErr *UserError
	if errors.As(err, &userErr) {
		return err
	}
	if IsPermissionError(err) {
		return &UserError{Message: MsgPermissionDenied, Err: errors.Join(ErrPermissionDenied, err)}
	}
	return &UserError{Message: prefix + ": " + err.Error(), Err: err}
}

// IsPermissionError reports whether err looks like an authorization failure
// from the store.
func IsPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPermissionDenied) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42501" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "permission") || strings.Contains(msg, "insufficient privilege")
}
