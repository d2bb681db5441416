package utils

import (
	"fmt"
	"strings"
)

// Category of a field-level parse failure.
type Kind string

var (
	KindInvalidDateTime       Kind = "InvalidDateTime"
	KindInvalidDuration       Kind = "InvalidDuration"
	KindInvalidRecurrence     Kind = "InvalidRecurrence"
	KindInvalidParticipant    Kind = "InvalidParticipant"
	KindUnrecognizedEnumValue Kind = "UnrecognizedEnumValue"
	KindInvalidInteger        Kind = "InvalidInteger"
	KindInvalidURI            Kind = "InvalidURI"
)

// ParseError is returned by every field parser. It keeps the raw value so a
// failure can be diagnosed without the original input at hand.
type ParseError struct {
	Kind   Kind
	Value  string
	Detail string
}

// Create a new parse error, the detail is formatted with fmt.Sprintf
func NewParseError(kind Kind, value string, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:   kind,
		Value:  value,
		Detail: fmt.Sprintf(format, args...),
	}
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	sb.WriteString(fmt.Sprintf(" | value: %q", e.Value))
	return sb.String()
}
