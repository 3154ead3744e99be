package diag

import "errors"

// Error kinds surfaced at the analyzer boundary. Callers wrap them with
// fmt.Errorf("%w: ...") and test with errors.Is.
var (
	ErrBadConfig      = errors.New("bad config")
	ErrBadOption      = errors.New("bad option")
	ErrInputTooLong   = errors.New("input too long")
	ErrNotInitialized = errors.New("not initialized")
	ErrInternal       = errors.New("internal error")
)

// Code is a short error class used as a log field.
type Code string

const (
	CodeUnknown        Code = "unknown"
	CodeBadConfig      Code = "bad_config"
	CodeBadOption      Code = "bad_option"
	CodeInputTooLong   Code = "input_too_long"
	CodeNotInitialized Code = "not_initialized"
	CodeInternal       Code = "internal"
)

// Classify maps err onto its kind.
func Classify(err error) Code {
	switch {
	case err == nil:
		return CodeUnknown
	case errors.Is(err, ErrBadConfig):
		return CodeBadConfig
	case errors.Is(err, ErrBadOption):
		return CodeBadOption
	case errors.Is(err, ErrInputTooLong):
		return CodeInputTooLong
	case errors.Is(err, ErrNotInitialized):
		return CodeNotInitialized
	case errors.Is(err, ErrInternal):
		return CodeInternal
	default:
		return CodeUnknown
	}
}
