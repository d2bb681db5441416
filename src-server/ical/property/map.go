package property

// One appearance of a property inside an event.
type Occurrence struct {
	Value  string
	Params Params
}

// Map groups the properties of one event by canonical name. Every
// occurrence is kept, in source order; cardinality is the builder's concern.
type Map struct {
	entries map[string][]Occurrence
	names   []string
	count   int
}

// Regroup a raw property list. Extraction never fails and never drops a
// property, including names nobody recognizes.
func Extract(props []RawProperty) *Map {
	m := &Map{entries: make(map[string][]Occurrence, len(props))}
	for _, prop := range props {
		m.Add(prop)
	}
	return m
}

// Append one property to the map.
func (m *Map) Add(prop RawProperty) {
	if m.entries == nil {
		m.entries = make(map[string][]Occurrence)
	}
	name := Canonical(prop.Name)
	if _, ok := m.entries[name]; !ok {
		m.names = append(m.names, name)
	}
	m.entries[name] = append(m.entries[name], Occurrence{
		Value:  prop.Value,
		Params: prop.Params,
	})
	m.count++
}

// Get the first occurrence of a property.
func (m *Map) First(name string) (Occurrence, bool) {
	occurrences := m.entries[Canonical(name)]
	if len(occurrences) == 0 {
		return Occurrence{}, false
	}
	return occurrences[0], true
}

// Get every occurrence of a property in source order.
func (m *Map) All(name string) []Occurrence {
	return m.entries[Canonical(name)]
}

// Check whether the property appears at least once.
func (m *Map) Has(name string) bool {
	return len(m.entries[Canonical(name)]) > 0
}

// Get the canonical names in order of first appearance.
func (m *Map) Names() []string {
	return m.names
}

// Get the total number of properties, duplicates included.
func (m *Map) Len() int {
	return m.count
}
