package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// InternalError carries a wrapped cause, an operator-facing hint and
// structured details safe to report back to callers.
type InternalError struct {
	Err               error
	Hint              string
	ReportableDetails map[string]interface{}
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.Hint
	}
	return e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// ErrorBuilder assembles an InternalError fluently; Mark finalizes it
// against one of the package sentinels.
type ErrorBuilder struct {
	err *InternalError
}

// NewError starts a builder from a fresh error message
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{
			Err: errors.NewWithDepth(1, msg),
		},
	}
}

// NewErrorf starts a builder from a formatted error message
func NewErrorf(format string, args ...interface{}) *ErrorBuilder {
	return NewError(fmt.Sprintf(format, args...))
}

// WithError starts a builder wrapping an existing error
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{
			Err: err,
		},
	}
}

// WithHint attaches a human-readable hint shown to API callers
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.Hint = hint
	return b
}

// WithHintf attaches a formatted hint
func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.err.Hint = fmt.Sprintf(format, args...)
	return b
}

// WithReportableDetails attaches structured details safe to surface
func (b *ErrorBuilder) WithReportableDetails(details map[string]interface{}) *ErrorBuilder {
	b.err.ReportableDetails = details
	return b
}

// Mark classifies the error against a sentinel and returns it
func (b *ErrorBuilder) Mark(sentinel error) error {
	return errors.Mark(b.err, sentinel)
}

// Hint extracts the outermost hint from an error chain, if any
func Hint(err error) string {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Hint
	}
	return ""
}

// ReportableDetails extracts the outermost reportable details, if any
func ReportableDetails(err error) map[string]interface{} {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.ReportableDetails
	}
	return nil
}
