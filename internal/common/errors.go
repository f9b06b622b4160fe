package common

import (
	"errors"
	"fmt"
)

// MaxMessageLength is the maximum number of characters a message may carry after trimming.
const MaxMessageLength = 200

var (
	// ErrInvalidInput is returned when caller-supplied data violates a precondition.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is returned for every authentication denial.
	// It never tells the caller whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrMessageTooLong matches any *MessageTooLongError.
	ErrMessageTooLong = errors.New("message too long")
)

// InvalidInput wraps ErrInvalidInput with a human-readable reason.
func InvalidInput(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

// MessageTooLongError carries the actual and maximum lengths of rejected content.
type MessageTooLongError struct {
	Actual int
	Max    int
}

func (e *MessageTooLongError) Error() string {
	return fmt.Sprintf("message content should contain at most %d characters, current length: %d", e.Max, e.Actual)
}

// Is reports whether target is ErrMessageTooLong.
func (e *MessageTooLongError) Is(target error) bool {
	return target == ErrMessageTooLong
}
