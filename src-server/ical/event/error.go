package event

import (
	"errors"
	"fmt"
	"strings"
	"typedcal/src-server/ical/utils"
)

// Why a conversion failed.
type Reason string

var (
	ReasonMissingUID       Reason = "MissingUid"
	ReasonFieldParse       Reason = "FieldParseError"
	ReasonInvalidTimeRange Reason = "InvalidTimeRange"
)

// Sentinels for errors.Is, one per Reason.
var (
	ErrMissingUID       = errors.New("missing uid")
	ErrFieldParse       = errors.New("field parse error")
	ErrInvalidTimeRange = errors.New("invalid time range")
)

// The single terminal error of a failed conversion. Field and Kind are set
// for ReasonFieldParse, Value holds the raw property value when there is one.
type ConversionError struct {
	Reason Reason
	Field  string
	Kind   utils.Kind
	Value  string
	Err    error
}

func missingUID(value string) *ConversionError {
	return &ConversionError{Reason: ReasonMissingUID, Field: "UID", Value: value}
}

// Wrap a field parser failure. The kind is taken from the *utils.ParseError
// the parser returned.
func fieldParseError(field, value string, err error) *ConversionError {
	convErr := &ConversionError{
		Reason: ReasonFieldParse,
		Field:  field,
		Value:  value,
		Err:    err,
	}
	var parseErr *utils.ParseError
	if errors.As(err, &parseErr) {
		convErr.Kind = parseErr.Kind
	}
	return convErr
}

func invalidTimeRange(field, value string, format string, args ...any) *ConversionError {
	return &ConversionError{
		Reason: ReasonInvalidTimeRange,
		Field:  field,
		Value:  value,
		Err:    fmt.Errorf(format, args...),
	}
}

func (e *ConversionError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Reason))
	sb.WriteString(" |")
	// fixed order so the same failure always prints the same message
	for _, arg := range []struct {
		key   string
		value string
	}{
		{"field", e.Field},
		{"kind", string(e.Kind)},
		{"value", e.Value},
	} {
		if arg.value == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf(" %s: %q", arg.key, arg.value))
	}
	if e.Err != nil {
		sb.WriteString(" cause: ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap exposes both the Reason sentinel and the underlying cause, so
// errors.Is(err, ErrFieldParse) and errors.As(err, &*utils.ParseError) both
// work on the same value.
func (e *ConversionError) Unwrap() []error {
	errs := make([]error, 0, 2)
	switch e.Reason {
	case ReasonMissingUID:
		errs = append(errs, ErrMissingUID)
	case ReasonFieldParse:
		errs = append(errs, ErrFieldParse)
	case ReasonInvalidTimeRange:
		errs = append(errs, ErrInvalidTimeRange)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
