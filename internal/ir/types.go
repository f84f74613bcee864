package ir

import (
	"fmt"
	"slices"
	"strings"
)

// Wildcard marks a sublattice entry that stands for every active constituent.
const Wildcard = "*"

// Phase describes the sublattice structure of a phase.
type Phase struct {
	Name        string     `json:"name"`
	Sublattices [][]string `json:"sublattices"` // constituents per sublattice
}

// Parameter is one energetic parameter record.
//
// The core reads only the fields below; Reference is carried through for
// provenance and never interpreted.
type Parameter struct {
	PhaseName        string     `json:"phase_name"`
	ParameterType    string     `json:"parameter_type"`    // "G", "L", "TC", ...
	ConstituentArray [][]string `json:"constituent_array"` // per sublattice; [Wildcard] for any
	ParameterOrder   int        `json:"parameter_order"`
	Value            Node       `json:"-"` // energetic magnitude
	Reference        string     `json:"reference,omitempty"`
}

// Clone returns a deep copy of the record. The Value tree is shared because
// nodes are immutable.
func (p Parameter) Clone() Parameter {
	out := p
	out.ConstituentArray = CloneConstituents(p.ConstituentArray)
	return out
}

// Key identifies the (phase, type, constituent array) family a parameter
// belongs to. Records that differ only in order share a key.
func (p Parameter) Key() string {
	return fmt.Sprintf("%s|%s|%s", p.PhaseName, p.ParameterType, ConstituentKey(p.ConstituentArray))
}

// String renders the record in the familiar database notation,
// e.g. L(LIQUID,A,B;1).
func (p Parameter) String() string {
	return fmt.Sprintf("%s(%s,%s;%d)", p.ParameterType, p.PhaseName, ConstituentKey(p.ConstituentArray), p.ParameterOrder)
}

// ConstituentKey renders a constituent array as "A,B:VA".
func ConstituentKey(arr [][]string) string {
	subls := make([]string, len(arr))
	for i, s := range arr {
		subls[i] = strings.Join(s, ",")
	}
	return strings.Join(subls, ":")
}

// CloneConstituents deep-copies a constituent array.
func CloneConstituents(arr [][]string) [][]string {
	if arr == nil {
		return nil
	}
	out := make([][]string, len(arr))
	for i, s := range arr {
		out[i] = slices.Clone(s)
	}
	return out
}

// EqualConstituents reports whether two constituent arrays are identical.
func EqualConstituents(a, b [][]string) bool {
	return slices.EqualFunc(a, b, slices.Equal[[]string])
}

// IsWildcard reports whether a sublattice entry is the wildcard marker.
func IsWildcard(subl []string) bool {
	return len(subl) > 0 && subl[0] == Wildcard
}

// Query is a predicate over parameter records.
// Zero-valued fields do not constrain the match.
type Query struct {
	PhaseName     string `json:"phase_name,omitempty"`
	ParameterType string `json:"parameter_type,omitempty"`

	// ConstituentArray, when non-nil, must equal the record's array exactly.
	ConstituentArray [][]string `json:"constituent_array,omitempty"`

	// Components, when non-empty, must contain every named constituent of
	// the record (wildcards always pass).
	Components []string `json:"components,omitempty"`
}

// Matches reports whether a parameter satisfies the query.
func (q Query) Matches(p Parameter) bool {
	if q.PhaseName != "" && q.PhaseName != p.PhaseName {
		return false
	}
	if q.ParameterType != "" && q.ParameterType != p.ParameterType {
		return false
	}
	if q.ConstituentArray != nil && !EqualConstituents(q.ConstituentArray, p.ConstituentArray) {
		return false
	}
	if len(q.Components) > 0 {
		for _, subl := range p.ConstituentArray {
			if IsWildcard(subl) {
				continue
			}
			for _, c := range subl {
				if !slices.Contains(q.Components, c) {
					return false
				}
			}
		}
	}
	return true
}

// SiblingQuery selects every order of the family p belongs to.
func SiblingQuery(p Parameter) Query {
	return Query{
		PhaseName:        p.PhaseName,
		ParameterType:    p.ParameterType,
		ConstituentArray: CloneConstituents(p.ConstituentArray),
	}
}

// SiteFraction returns the symbol for the fraction of comp on sublattice
// subl of phase.
func SiteFraction(phase string, subl int, comp string) Symbol {
	return Symbol{Name: SiteFractionName(phase, subl, comp)}
}

// SiteFractionName formats a site-fraction symbol name, e.g. Y(FCC_A1,0,AL).
func SiteFractionName(phase string, subl int, comp string) string {
	return fmt.Sprintf("Y(%s,%d,%s)", phase, subl, comp)
}

// Database is a set of phases and the parameters defined on them.
type Database struct {
	Phases     []Phase     `json:"phases"`
	Parameters []Parameter `json:"parameters"`
}

// Phase looks up a phase by name.
func (db *Database) Phase(name string) (Phase, bool) {
	for _, ph := range db.Phases {
		if ph.Name == name {
			return ph, true
		}
	}
	return Phase{}, false
}

// Components returns every named constituent of every phase, sorted and
// deduplicated.
func (db *Database) Components() []string {
	var out []string
	for _, ph := range db.Phases {
		for _, subl := range ph.Sublattices {
			for _, c := range subl {
				if c != Wildcard && !slices.Contains(out, c) {
					out = append(out, c)
				}
			}
		}
	}
	slices.Sort(out)
	return out
}
