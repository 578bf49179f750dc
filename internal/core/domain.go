package core

import (
	"errors"
	"fmt"
	"time"
)

// TimestampLayout is the ISO-8601 form used for server-assigned dates:
// UTC, millisecond precision, "Z" suffix.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

type (
	// Account is a registered user identified by a unique email.
	Account struct {
		ID       int64
		Username string
		Email    string
		Password string // stored verbatim
	}

	Donation struct {
		ID        int64
		AccountID int64
		Amount    float64
		Date      string
	}

	VolunteerLog struct {
		ID        int64
		AccountID int64
		Hours     float64
		Date      string
	}

	CausePledge struct {
		ID        int64
		AccountID int64
		CauseName string
	}

	// Signup is a registration request. A nil field was absent from the
	// request; it is stored as NULL, which the schema rejects.
	Signup struct {
		Username *string
		Email    *string
		Password *string
	}

	// Login is a credential pair. A nil field never matches a stored account.
	Login struct {
		Email    *string
		Password *string
	}
)

// NewSignup returns a Signup with every field present.
func NewSignup(username, email, password string) Signup {
	return Signup{Username: &username, Email: &email, Password: &password}
}

// NewLogin returns a Login with both fields present.
func NewLogin(email, password string) Login {
	return Login{Email: &email, Password: &password}
}

var (
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrMissingField       = errors.New("missing required field")
)

// StorageError wraps a low-level persistence failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError returns nil when err is nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err carries a StorageError anywhere in its chain.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// Timestamp formats t the way every stored date is written.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
