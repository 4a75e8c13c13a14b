package mip

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const lpLineWidth = 80

// WriteLP writes the model in CPLEX LP format.
//
// Constraints with an empty left-hand side are written with a zero
// coefficient on the first variable so the file stays loadable; in a model
// without variables they are written as comments.
func WriteLP(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)
	lw := &lpWriter{w: bw, m: m}

	lw.line(`\ Model ` + m.name)
	if m.maximize {
		lw.line("Maximize")
	} else {
		lw.line("Minimize")
	}
	lw.expr(" obj:", m.objective, m.objOffset)

	lw.line("Subject To")
	for _, c := range m.constraints {
		terms := c.Terms
		if len(terms) == 0 {
			if len(m.varNames) == 0 {
				lw.line(fmt.Sprintf(`\ %s: 0 %s %s`, c.Name, c.Sense, formatNumber(c.RHS)))
				continue
			}
			terms = []Term{{Var: 0, Coeff: 0}}
		}
		lw.exprRel(" "+c.Name+":", terms, c.Sense, c.RHS)
	}

	if len(m.varNames) > 0 {
		lw.line("Binaries")
		lw.names(m.varNames)
	}
	lw.line("End")
	if lw.err != nil {
		return lw.err
	}
	return bw.Flush()
}

type lpWriter struct {
	w   *bufio.Writer
	m   *Model
	err error
}

func (lw *lpWriter) line(s string) {
	if lw.err != nil {
		return
	}
	_, lw.err = lw.w.WriteString(s + "\n")
}

func (lw *lpWriter) expr(label string, terms []Term, offset float64) {
	parts := lw.termParts(terms)
	switch {
	case len(parts) == 0:
		parts = append(parts, formatNumber(offset))
	case offset != 0:
		parts = append(parts, signed(offset, ""))
	}
	lw.wrapped(label, parts)
}

func (lw *lpWriter) exprRel(label string, terms []Term, sense Sense, rhs float64) {
	parts := lw.termParts(terms)
	parts = append(parts, sense.String()+" "+formatNumber(rhs))
	lw.wrapped(label, parts)
}

func (lw *lpWriter) termParts(terms []Term) []string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		parts = append(parts, signed(t.Coeff, lw.m.varNames[t.Var]))
	}
	if len(parts) > 0 {
		parts[0] = strings.TrimPrefix(parts[0], "+ ")
	}
	return parts
}

// wrapped writes label followed by parts, breaking lines before they grow
// past lpLineWidth. Continuation lines are indented.
func (lw *lpWriter) wrapped(label string, parts []string) {
	var sb strings.Builder
	sb.WriteString(label)
	width := sb.Len()
	for _, p := range parts {
		if width+1+len(p) > lpLineWidth && width > len(label) {
			lw.line(sb.String())
			sb.Reset()
			sb.WriteString("  ")
			width = 2
		}
		sb.WriteByte(' ')
		sb.WriteString(p)
		width += 1 + len(p)
	}
	lw.line(sb.String())
}

func (lw *lpWriter) names(names []string) {
	lw.wrapped("", names)
}

// signed renders `coeff name` as "+ 3 x", "- x", "+ 0 x" or "+ 5" for a bare
// constant.
func signed(coeff float64, name string) string {
	sign := "+"
	if coeff < 0 || (coeff == 0 && math.Signbit(coeff)) {
		sign = "-"
		coeff = -coeff
	}
	if name == "" {
		return sign + " " + formatNumber(coeff)
	}
	if coeff == 1 {
		return sign + " " + name
	}
	return sign + " " + formatNumber(coeff) + " " + name
}

func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
