package ir

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainParameter = "rkc/parameter/v1"
	DomainAssembly  = "rkc/assembly/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// MarshalParameter produces the canonical JSON encoding of a parameter
// record, keys in sorted order. Reference is excluded: it is provenance,
// not identity.
func MarshalParameter(p Parameter) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"constituent_array":`)
	if err := writeStringMatrix(&buf, p.ConstituentArray); err != nil {
		return nil, err
	}
	fmt.Fprintf(&buf, `,"parameter_order":%d,"parameter_type":`, p.ParameterOrder)
	if err := writeString(&buf, p.ParameterType); err != nil {
		return nil, err
	}
	buf.WriteString(`,"phase_name":`)
	if err := writeString(&buf, p.PhaseName); err != nil {
		return nil, err
	}
	buf.WriteString(`,"value":`)
	if err := writeNode(&buf, p.Value); err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalConstituents produces the canonical JSON encoding of a
// constituent array, e.g. [["A","B"],["VA"]].
func MarshalConstituents(arr [][]string) (string, error) {
	var buf bytes.Buffer
	if err := writeStringMatrix(&buf, arr); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeStringMatrix(buf *bytes.Buffer, arr [][]string) error {
	buf.WriteByte('[')
	for i, subl := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		for j, s := range subl {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, s); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	}
	buf.WriteByte(']')
	return nil
}

// ParameterID computes the content-addressed ID of a parameter record.
// The ID is stable across imports given the same record.
func ParameterID(p Parameter) (string, error) {
	canonical, err := MarshalParameter(p)
	if err != nil {
		return "", fmt.Errorf("ParameterID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainParameter, canonical), nil
}

// MustParameterID is like ParameterID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParameterID(p Parameter) string {
	id, err := ParameterID(p)
	if err != nil {
		panic(err)
	}
	return id
}

// AssemblyKey identifies one assembly: the phase, the active components,
// the query, the set of parameter records it would read and the
// temperature window [lo, hi). Any change in any of them yields a different
// key, which makes it safe to use as a compiled-term cache key.
func AssemblyKey(phase Phase, components []string, q Query, params []Parameter, lo, hi float64) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`{"components":`)
	comps := append([]string(nil), components...)
	sort.Strings(comps)
	if err := writeStringMatrix(&buf, [][]string{comps}); err != nil {
		return "", err
	}

	ids := make([]string, len(params))
	for i, p := range params {
		id, err := ParameterID(p)
		if err != nil {
			return "", fmt.Errorf("AssemblyKey: %w", err)
		}
		ids[i] = id
	}
	sort.Strings(ids)
	buf.WriteString(`,"parameters":`)
	if err := writeStringMatrix(&buf, [][]string{ids}); err != nil {
		return "", err
	}

	buf.WriteString(`,"phase":`)
	if err := writeString(&buf, phase.Name); err != nil {
		return "", err
	}
	buf.WriteString(`,"query":{"constituent_array":`)
	if err := writeStringMatrix(&buf, q.ConstituentArray); err != nil {
		return "", err
	}
	buf.WriteString(`,"parameter_type":`)
	if err := writeString(&buf, q.ParameterType); err != nil {
		return "", err
	}
	buf.WriteString(`},"sublattices":`)
	if err := writeStringMatrix(&buf, phase.Sublattices); err != nil {
		return "", err
	}
	low, err := canonicalNumber(lo)
	if err != nil {
		return "", fmt.Errorf("AssemblyKey: window: %w", err)
	}
	high, err := canonicalNumber(hi)
	if err != nil {
		return "", fmt.Errorf("AssemblyKey: window: %w", err)
	}
	fmt.Fprintf(&buf, `,"window":[%s,%s]}`, low, high)

	return hashWithDomain(DomainAssembly, buf.Bytes()), nil
}
