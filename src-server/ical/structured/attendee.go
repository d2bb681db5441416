package structured

import (
	"regexp"
	"slices"
	"strings"
	"typedcal/src-server/ical/property"
	"typedcal/src-server/ical/utils"
)

type (
	AttendeeCustomertype      string
	AttendeeRole              string
	AttendeeParticipantStatus string
)

var (
	AttendeeCutypeIndividual AttendeeCustomertype = "INDIVIDUAL"
	AttendeeCutypeGroup      AttendeeCustomertype = "GROUP"
	AttendeeCutypeResource   AttendeeCustomertype = "RESOURCE"
	AttendeeCutypeRoom       AttendeeCustomertype = "ROOM"
	AttendeeCutypeUnknown    AttendeeCustomertype = "UNKNOWN"

	AttendeeRoleChair AttendeeRole = "CHAIR"           // organizer
	AttendeeRoleReq   AttendeeRole = "REQ-PARTICIPANT" // required participant
	AttendeeRoleOpt   AttendeeRole = "OPT-PARTICIPANT" // optional participant
	AttendeeRoleNon   AttendeeRole = "NON-PARTICIPANT" // for information only

	AttendeePartStatNeedsAction AttendeeParticipantStatus = "NEEDS-ACTION"
	AttendeePartStatAccepted    AttendeeParticipantStatus = "ACCEPTED"
	AttendeePartStatDeclined    AttendeeParticipantStatus = "DECLINED"
	AttendeePartStatTentative   AttendeeParticipantStatus = "TENTATIVE"
	AttendeePartStatDelegated   AttendeeParticipantStatus = "DELEGATED"
	AttendeePartStatCompleted   AttendeeParticipantStatus = "COMPLETED"
	AttendeePartStatInProcess   AttendeeParticipantStatus = "IN-PROCESS"
)

var schemePattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.-]*):(.*)$`)

// An ATTENDEE or ORGANIZER. Parameters that are absent from the source are
// left empty rather than defaulted, so callers can tell "not stated" apart
// from the RFC 5545 defaults (INDIVIDUAL, REQ-PARTICIPANT, NEEDS-ACTION).
type Participant struct {
	Scheme  string // e.g. "mailto", lower-cased
	Address string // value without the scheme
	Cn      string

	CuType   AttendeeCustomertype
	Role     AttendeeRole
	PartStat AttendeeParticipantStatus
	Rsvp     bool

	Member        []string
	DelegatedTo   []string
	DelegatedFrom []string
	SentBy        string
	Dir           string
}

// Copy the participant so that its lists no longer share storage.
func (p Participant) Clone() Participant {
	p.Member = slices.Clone(p.Member)
	p.DelegatedTo = slices.Clone(p.DelegatedTo)
	p.DelegatedFrom = slices.Clone(p.DelegatedFrom)
	return p
}

// Get the CN if present, otherwise the address
func (p Participant) DisplayName() string {
	if p.Cn != "" {
		return p.Cn
	}
	return p.Address
}

// Get the value as it appeared in the source, scheme included
func (p Participant) URI() string {
	if p.Scheme == "" {
		return p.Address
	}
	return p.Scheme + ":" + p.Address
}

// Parse an ATTENDEE/ORGANIZER value and its parameters into a Participant.
// Example usage:
//
//	participant, err := structured.ParseParticipant(
//	    "mailto:jane@example.com",
//	    property.New("ATTENDEE", "", "CN", "Jane", "ROLE", "CHAIR").Params,
//	)
func ParseParticipant(value string, params property.Params) (Participant, error) {
	var p Participant

	address := strings.TrimSpace(value)
	if match := schemePattern.FindStringSubmatch(address); match != nil {
		p.Scheme = strings.ToLower(match[1])
		address = strings.TrimSpace(match[2])
	}
	if address == "" {
		return Participant{}, utils.NewParseError(utils.KindInvalidParticipant, value, "address is missing")
	}
	p.Address = address

	for _, param := range params {
		paramValue := strings.Trim(strings.TrimSpace(param.Value), `"`)
		switch property.Canonical(param.Name) {
		case "CN":
			p.Cn = paramValue
		case "ROLE":
			role, ok := parseRole(paramValue)
			if !ok {
				return Participant{}, utils.NewParseError(utils.KindInvalidParticipant, value, "invalid ROLE: %s", paramValue)
			}
			p.Role = role
		case "PARTSTAT":
			partStat, ok := parsePartStat(paramValue)
			if !ok {
				return Participant{}, utils.NewParseError(utils.KindInvalidParticipant, value, "invalid PARTSTAT: %s", paramValue)
			}
			p.PartStat = partStat
		case "CUTYPE":
			cuType, ok := parseCuType(paramValue)
			if !ok {
				return Participant{}, utils.NewParseError(utils.KindInvalidParticipant, value, "invalid CUTYPE: %s", paramValue)
			}
			p.CuType = cuType
		case "RSVP":
			p.Rsvp = strings.EqualFold(paramValue, "TRUE")
		case "MEMBER":
			p.Member = append(p.Member, paramValue)
		case "DELEGATED-TO":
			p.DelegatedTo = append(p.DelegatedTo, paramValue)
		case "DELEGATED-FROM":
			p.DelegatedFrom = append(p.DelegatedFrom, paramValue)
		case "SENT-BY":
			p.SentBy = paramValue
		case "DIR":
			p.Dir = paramValue
		}
	}

	return p, nil
}

// experimental (X-) values are accepted as-is
func isExtension(value string) bool {
	return strings.HasPrefix(strings.ToUpper(value), "X-")
}

func parseRole(value string) (AttendeeRole, bool) {
	switch upper := strings.ToUpper(value); upper {
	case "CHAIR":
		return AttendeeRoleChair, true
	case "REQ-PARTICIPANT":
		return AttendeeRoleReq, true
	case "OPT-PARTICIPANT":
		return AttendeeRoleOpt, true
	case "NON-PARTICIPANT":
		return AttendeeRoleNon, true
	default:
		return AttendeeRole(upper), isExtension(upper)
	}
}

func parsePartStat(value string) (AttendeeParticipantStatus, bool) {
	switch upper := strings.ToUpper(value); upper {
	case "NEEDS-ACTION":
		return AttendeePartStatNeedsAction, true
	case "ACCEPTED":
		return AttendeePartStatAccepted, true
	case "DECLINED":
		return AttendeePartStatDeclined, true
	case "TENTATIVE":
		return AttendeePartStatTentative, true
	case "DELEGATED":
		return AttendeePartStatDelegated, true
	case "COMPLETED":
		return AttendeePartStatCompleted, true
	case "IN-PROCESS":
		return AttendeePartStatInProcess, true
	default:
		return AttendeeParticipantStatus(upper), isExtension(upper)
	}
}

func parseCuType(value string) (AttendeeCustomertype, bool) {
	switch upper := strings.ToUpper(value); upper {
	case "INDIVIDUAL":
		return AttendeeCutypeIndividual, true
	case "GROUP":
		return AttendeeCutypeGroup, true
	case "RESOURCE":
		return AttendeeCutypeResource, true
	case "ROOM":
		return AttendeeCutypeRoom, true
	case "UNKNOWN":
		return AttendeeCutypeUnknown, true
	default:
		return AttendeeCustomertype(upper), isExtension(upper)
	}
}
