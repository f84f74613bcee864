package ir

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalises a species or phase name: trimmed, NFC-normalised
// and upper-cased. Database files are case-insensitive; the IR is not.
//
// A fresh Caser is used per call because Casers are not safe for
// concurrent use.
func Normalize(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == Wildcard {
		return name
	}
	return cases.Upper(language.Und).String(name)
}

// NormalizeAll normalises a list of names in place and returns it.
func NormalizeAll(names []string) []string {
	for i, n := range names {
		names[i] = Normalize(n)
	}
	return names
}

// NormalizeParameter normalises the phase name and every constituent of p.
func NormalizeParameter(p Parameter) Parameter {
	out := p.Clone()
	out.PhaseName = Normalize(out.PhaseName)
	out.ParameterType = Normalize(out.ParameterType)
	for _, subl := range out.ConstituentArray {
		NormalizeAll(subl)
	}
	return out
}

// NormalizePhase normalises the phase name and its constituents.
func NormalizePhase(ph Phase) Phase {
	out := Phase{Name: Normalize(ph.Name), Sublattices: CloneConstituents(ph.Sublattices)}
	for _, subl := range out.Sublattices {
		NormalizeAll(subl)
	}
	return out
}
