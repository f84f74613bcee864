package assembler

import (
	"slices"

	"github.com/roach88/rkc/internal/ir"
)

// Fraction is one degree-of-freedom column: the fraction of Component on
// Sublattice.
type Fraction struct {
	Sublattice int    `json:"sublattice"`
	Component  string `json:"component"`
	Name       string `json:"name"`
}

// DOF is the ordered list of site fractions a matrix is indexed against.
// It is immutable once built.
type DOF struct {
	fractions []Fraction
	index     map[string]int
}

// BuildDOF lists the active fractions of phase, sublattice-major, with the
// constituents of each sublattice sorted and restricted to components.
func BuildDOF(phase ir.Phase, components []string) DOF {
	d := DOF{index: make(map[string]int)}
	for i := range phase.Sublattices {
		for _, comp := range activeConstituents(phase, i, components) {
			name := ir.SiteFractionName(phase.Name, i, comp)
			d.index[name] = len(d.fractions)
			d.fractions = append(d.fractions, Fraction{Sublattice: i, Component: comp, Name: name})
		}
	}
	return d
}

// activeConstituents returns the sorted, deduplicated constituents of
// sublattice i that are also in components.
func activeConstituents(phase ir.Phase, i int, components []string) []string {
	var out []string
	for _, c := range phase.Sublattices[i] {
		if slices.Contains(components, c) && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}

// Len is the number of columns.
func (d DOF) Len() int { return len(d.fractions) }

// Names returns the column names in order.
func (d DOF) Names() []string {
	out := make([]string, len(d.fractions))
	for i, f := range d.fractions {
		out[i] = f.Name
	}
	return out
}

// Fractions returns a copy of the columns.
func (d DOF) Fractions() []Fraction { return slices.Clone(d.fractions) }

// Index returns the column of a site-fraction name.
func (d DOF) Index(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}
