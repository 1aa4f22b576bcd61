package dispatch

import (
	"errors"
	"fmt"
)

// GenericFailure is the only failure text shown to a caller when the cause is
// not a CallerError or ExternalServiceError. The cause itself is logged.
const GenericFailure = "Something went wrong while running this command."

// ErrProtocolViolation marks handler-authoring defects: replying twice,
// editing before replying, and so on.
var ErrProtocolViolation = errors.New("response protocol violation")

var (
	ErrAlreadySent         = fmt.Errorf("%w: primary reply already sent", ErrProtocolViolation)
	ErrAckDeadlineExceeded = fmt.Errorf("%w: acknowledgement deadline exceeded", ErrProtocolViolation)
	ErrNothingToEdit       = fmt.Errorf("%w: nothing to edit", ErrProtocolViolation)
	ErrAlreadyEdited       = fmt.Errorf("%w: primary reply already edited", ErrProtocolViolation)
	ErrChannelNotOpen      = fmt.Errorf("%w: followup before primary reply", ErrProtocolViolation)
)

var (
	ErrDuplicateCommand  = errors.New("duplicate command")
	ErrCommandNotFound   = errors.New("command not found")
	ErrInvalidDescriptor = errors.New("invalid command descriptor")
	ErrRegistryFrozen    = errors.New("registry is frozen")
)

// CallerError is a problem with the request itself (bad argument, missing
// permission, rate limited). Msg is shown privately to the caller as is.
type CallerError struct {
	Msg string
}

func (e *CallerError) Error() string { return e.Msg }

// Callerf builds a CallerError with a formatted message.
func Callerf(format string, args ...any) *CallerError {
	return &CallerError{Msg: fmt.Sprintf(format, args...)}
}

// ExternalServiceError reports a collaborator refusing or failing an action.
// Reason is short and safe to show; Err is the raw cause and is only logged.
type ExternalServiceError struct {
	Service string
	Reason  string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Service, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Reason, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// publicMessage returns the text a caller may see for err, and whether err
// is an expected (non-fault) outcome.
func publicMessage(err error) (msg string, expected bool) {
	var ce *CallerError
	if errors.As(err, &ce) {
		return ce.Msg, true
	}
	var ee *ExternalServiceError
	if errors.As(err, &ee) && ee.Reason != "" {
		return ee.Reason, true
	}
	return GenericFailure, false
}
