package domain

import "errors"

var (
	// ErrSourceUnavailable means the CLI binary or the service behind it is
	// missing. It is the only error eligible for mock substitution.
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrTimeout           = errors.New("command timed out")
	ErrMalformedResponse = errors.New("malformed response")
	ErrCommandFailed     = errors.New("command failed")
	ErrValidation        = errors.New("validation failed")
	ErrTradingDisabled   = errors.New("trading disabled")
	ErrNotFound          = errors.New("not found")
	ErrLockHeld          = errors.New("lock held by another owner")
)

// Wire codes reported to HTTP clients alongside error messages.
const (
	CodeUnavailable     = "CLI_UNAVAILABLE"
	CodeTimeout         = "CLI_TIMEOUT"
	CodeBadJSON         = "BAD_JSON"
	CodeFailed          = "CLI_FAILED"
	CodeValidation      = "VALIDATION"
	CodeTradingDisabled = "TRADING_DISABLED"
)

// ErrorCode maps err onto its wire code. It returns fallback when err does not
// wrap any of the known sentinels.
func ErrorCode(err error, fallback string) string {
	switch {
	case err == nil:
		return fallback
	case errors.Is(err, ErrSourceUnavailable):
		return CodeUnavailable
	case errors.Is(err, ErrTimeout):
		return CodeTimeout
	case errors.Is(err, ErrMalformedResponse):
		return CodeBadJSON
	case errors.Is(err, ErrCommandFailed):
		return CodeFailed
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrTradingDisabled):
		return CodeTradingDisabled
	default:
		return fallback
	}
}

// ValidationError describes a rejected request field. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
