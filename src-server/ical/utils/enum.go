package utils

import "strings"

type (
	Status       string
	Transparency string
	Class        string
)

var (
	StatusTentative Status = "TENTATIVE"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"

	TransparencyOpaque      Transparency = "OPAQUE"      // blocks time
	TransparencyTransparent Transparency = "TRANSPARENT" // does not block time

	ClassPublic       Class = "PUBLIC"
	ClassPrivate      Class = "PRIVATE"
	ClassConfidential Class = "CONFIDENTIAL"
)

// Parsing the STATUS of a VEVENT, case-insensitive.
func ParseStatus(value string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "TENTATIVE":
		return StatusTentative, nil
	case "CONFIRMED":
		return StatusConfirmed, nil
	case "CANCELLED":
		return StatusCancelled, nil
	default:
		return "", NewParseError(KindUnrecognizedEnumValue, value, "invalid STATUS")
	}
}

// Parsing TRANSP, case-insensitive.
func ParseTransparency(value string) (Transparency, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "OPAQUE":
		return TransparencyOpaque, nil
	case "TRANSPARENT":
		return TransparencyTransparent, nil
	default:
		return "", NewParseError(KindUnrecognizedEnumValue, value, "invalid TRANSP")
	}
}

// Parsing CLASS, case-insensitive.
func ParseClass(value string) (Class, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "PUBLIC":
		return ClassPublic, nil
	case "PRIVATE":
		return ClassPrivate, nil
	case "CONFIDENTIAL":
		return ClassConfidential, nil
	default:
		return "", NewParseError(KindUnrecognizedEnumValue, value, "invalid CLASS")
	}
}
