package matrix

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteText renders m in a stable line-oriented form:
//
//	dof: Y(LIQUID,0,A) Y(LIQUID,0,B)
//	rows: 1
//	0 6000 | 0 0 0 0 | 1 1 | 1 1000
//	symbolic: 0
//
// Each row line is interval, reserved exponents, composition exponents,
// then scale and coefficient (or symbol).
func (m *Matrix) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "dof: %s\n", strings.Join(m.DOF, " "))
	fmt.Fprintf(bw, "rows: %d\n", len(m.Rows))
	for _, r := range m.Rows {
		writeRowText(bw, r.Low, r.High, r.Powers, r.Scale, formatFloat(r.Coef))
	}
	fmt.Fprintf(bw, "symbolic: %d\n", len(m.Symbolic))
	for _, r := range m.Symbolic {
		writeRowText(bw, r.Low, r.High, r.Powers, r.Scale, r.Symbol)
	}
	return bw.Flush()
}

// String returns the WriteText rendering.
func (m *Matrix) String() string {
	var sb strings.Builder
	_ = m.WriteText(&sb)
	return sb.String()
}

func writeRowText(w *bufio.Writer, lo, hi float64, powers []int, scale float64, last string) {
	w.WriteString(formatFloat(lo))
	w.WriteByte(' ')
	w.WriteString(formatFloat(hi))
	w.WriteString(" |")
	writeInts(w, powers[:NumReserved])
	w.WriteString(" |")
	writeInts(w, powers[NumReserved:])
	w.WriteString(" | ")
	w.WriteString(formatFloat(scale))
	w.WriteByte(' ')
	w.WriteString(last)
	w.WriteByte('\n')
}

func writeInts(w *bufio.Writer, xs []int) {
	for _, x := range xs {
		w.WriteByte(' ')
		w.WriteString(strconv.Itoa(x))
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
