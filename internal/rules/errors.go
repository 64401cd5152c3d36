package rules

import (
	"errors"
	"fmt"
	"strings"
)

// NotDetectedError reports a frame whose headers matched no provider rule.
type NotDetectedError struct {
	Frame   string
	Headers []string
}

func (e *NotDetectedError) Error() string {
	return fmt.Sprintf("frame %q: no provider matches headers [%s]; add a rule to the ingest config",
		e.Frame, strings.Join(e.Headers, ", "))
}

// IsNotDetected reports whether err is a NotDetectedError.
func IsNotDetected(err error) bool {
	var ne *NotDetectedError
	return errors.As(err, &ne)
}

// MissingRequiredFieldsError reports a frame that, after normalization,
// still lacks required canonical columns. Missing preserves the order the
// columns are declared in the schema.
type MissingRequiredFieldsError struct {
	Missing []string
}

func (e *MissingRequiredFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: [%s]", strings.Join(e.Missing, ", "))
}

// IsMissingRequiredFields reports whether err is a MissingRequiredFieldsError.
func IsMissingRequiredFields(err error) bool {
	var me *MissingRequiredFieldsError
	return errors.As(err, &me)
}

// DerivedFieldError reports a derived-column formula that referenced an
// absent column or produced a non-numeric result.
type DerivedFieldError struct {
	Column string
	Err    error
}

func (e *DerivedFieldError) Error() string {
	return fmt.Sprintf("derived column %q: %v", e.Column, e.Err)
}

func (e *DerivedFieldError) Unwrap() error { return e.Err }

// IsDerivedFieldError reports whether err is a DerivedFieldError.
func IsDerivedFieldError(err error) bool {
	var de *DerivedFieldError
	return errors.As(err, &de)
}
