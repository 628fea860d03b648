package unitgraph

// Unit is a node of the graph. Units are created while a table is built and
// are owned by the Graph that created them.
type Unit struct {
	id        int
	name      string
	abbrev    string
	hasAbbrev bool
}

// ID is the unit's index in its Graph, in table order.
func (u *Unit) ID() int { return u.id }

// Name returns the lower-cased, singularized full name.
func (u *Unit) Name() string { return u.name }

// Abbrev returns the unit's abbreviation and whether the table supplied one.
func (u *Unit) Abbrev() (string, bool) { return u.abbrev, u.hasAbbrev }

// String renders the unit as "name(abbrev)", or just "name" when the unit
// has no abbreviation.
func (u *Unit) String() string {
	if !u.hasAbbrev {
		return u.name
	}
	return u.name + "(" + u.abbrev + ")"
}

// matches reports whether token equals the unit's name or abbreviation.
func (u *Unit) matches(token string) bool {
	return u.name == token || (u.hasAbbrev && u.abbrev == token)
}
