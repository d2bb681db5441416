// Package `property` holds the raw, uninterpreted shape of an iCalendar
// property as handed over by an upstream parser, and the lookup table the
// event builder reads from.
//
// A property is a `NAME;PARAM=value;PARAM=value:VALUE` line, already split by
// the upstream parser into its name, its value and its ordered parameters.
package property

import (
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// a cases.Caser keeps state, one per goroutine at a time
var folders = sync.Pool{
	New: func() any {
		folder := cases.Upper(language.Und)
		return &folder
	},
}

// Canonical returns the case-folded form of a property or parameter name.
func Canonical(name string) string {
	folder := folders.Get().(*cases.Caser)
	defer folders.Put(folder)
	return folder.String(strings.TrimSpace(name))
}

// A single `name=value` modifier attached to a property value.
type Param struct {
	Name  string
	Value string
}

// Ordered parameter list. A multi-valued parameter such as
// `DELEGATED-TO="a","b"` is stored as one entry per value.
type Params []Param

// Get the first value of the parameter, matched case-insensitively.
func (p Params) Get(name string) (string, bool) {
	name = Canonical(name)
	for _, param := range p {
		if Canonical(param.Name) == name {
			return param.Value, true
		}
	}
	return "", false
}

// Get every value of the parameter in order of appearance.
func (p Params) All(name string) []string {
	name = Canonical(name)
	var values []string
	for _, param := range p {
		if Canonical(param.Name) == name {
			values = append(values, param.Value)
		}
	}
	return values
}

// One property as produced by the upstream parser.
type RawProperty struct {
	Name   string
	Value  string
	Params Params
}

// Copy the property so that its Params no longer share storage.
func (p RawProperty) Clone() RawProperty {
	p.Params = slices.Clone(p.Params)
	return p
}

// Create a RawProperty from a name, a value and alternating parameter
// name/value pairs. A trailing unpaired parameter name is ignored.
//
//	property.New("DTSTART", "20240101T090000", "TZID", "Europe/Paris")
func New(name, value string, params ...string) RawProperty {
	prop := RawProperty{Name: name, Value: value}
	for i := 0; i+1 < len(params); i += 2 {
		prop.Params = append(prop.Params, Param{Name: params[i], Value: params[i+1]})
	}
	return prop
}
