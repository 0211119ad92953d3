package fatvol

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// DriverError is the error type returned by everything in this module. It can
// be refined with an additional message, or wrap a lower-level error so that
// [errors.Is] matches both the original error and the root error.
type DriverError interface {
	error
	WithMessage(message string) DriverError
	Wrap(err error) DriverError
}

type baseError string

const rootError = baseError("")

var ErrArgumentOutOfRange = rootError.WithMessage("Numerical argument out of domain")
var ErrClosed = rootError.WithMessage("Volume is closed")
var ErrDecodeFailed = rootError.WithMessage("Structure could not be decoded")
var ErrFileSystemCorrupted = rootError.WithMessage("Structure needs cleaning")
var ErrInvalidArgument = rootError.WithMessage("Invalid argument")
var ErrIOFailed = rootError.WithMessage("Input/output error")
var ErrNotSupported = rootError.WithMessage("Operation not supported")
var ErrOpenFailed = rootError.WithMessage("Data source could not be opened")
var ErrShortRead = rootError.WithMessage("Unexpected short read")

func (e baseError) Error() string {
	return string(e)
}

func (e baseError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       message,
		originalError: e,
	}
}

func (e baseError) Wrap(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

// -----------------------------------------------------------------------------

type customDriverError struct {
	message       string
	originalError error
}

// Error implements the `error` object interface. When called, it returns a string
// describing the error.
func (e customDriverError) Error() string {
	return e.message
}

func (e customDriverError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customDriverError) Wrap(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

func (e customDriverError) Unwrap() error {
	return e.originalError
}

// Collect folds a list of problems into a single error. It returns nil if
// `problems` is empty; otherwise the result matches `base` with [errors.Is]
// as well as every individual problem.
func Collect(base DriverError, problems []error) error {
	if len(problems) == 0 {
		return nil
	}

	var combined *multierror.Error
	combined = multierror.Append(combined, problems...)
	return base.Wrap(combined)
}
