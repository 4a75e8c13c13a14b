package mip

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteLP(t *testing.T) {
	testCases := []struct {
		name  string
		build func(m *Model)
		want  string
	}{
		{
			name: "minimize with empty row",
			build: func(m *Model) {
				x, _ := m.NewBinaryVar("x")
				y, _ := m.NewBinaryVar("y")
				m.Minimize(NewLinearExpr().AddTerm(x, 3).Add(y))
				m.AddGreaterOrEqual(Sum(x, y), NewConstant(1), "pick")
				m.AddEquality(NewConstant(0), NewConstant(1), "zero")
			},
			want: `\ Model lp
Minimize
 obj: 3 x + y
Subject To
 pick: x + y >= 1
 zero: 0 x = 1
Binaries
 x y
End
`,
		},
		{
			name: "maximize with offset and negative terms",
			build: func(m *Model) {
				x, _ := m.NewBinaryVar("x")
				y, _ := m.NewBinaryVar("y")
				m.Maximize(NewLinearExpr().Add(x).AddTerm(y, -2.5).AddConstant(5))
				m.AddLessOrEqual(NewLinearExpr().AddTerm(x, -1), NewLinearExpr().AddTerm(y, 4), "")
			},
			want: `\ Model lp
Maximize
 obj: x - 2.5 y + 5
Subject To
 c1: - x - 4 y <= 0
Binaries
 x y
End
`,
		},
		{
			name: "no variables",
			build: func(m *Model) {
				m.AddEquality(NewConstant(0), NewConstant(1), "never")
			},
			want: `\ Model lp
Minimize
 obj: 0
Subject To
\ never: 0 = 1
End
`,
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			m := NewModel("lp")
			test.build(m)
			var buf bytes.Buffer
			if err := WriteLP(&buf, m); err != nil {
				t.Fatalf("WriteLP() err = %v", err)
			}
			if diff := cmp.Diff(test.want, buf.String()); diff != "" {
				t.Errorf("WriteLP() returned unexpected diff (-want+got): %v", diff)
			}
		})
	}
}

func TestWriteLP_WrapsLongRows(t *testing.T) {
	m := NewModel("wide")
	var vs []Var
	for i := 0; i < 40; i++ {
		v, _ := m.NewBinaryVar("")
		vs = append(vs, v)
	}
	m.AddLessOrEqual(Sum(vs...), NewConstant(3), "wide_row")
	var buf bytes.Buffer
	if err := WriteLP(&buf, m); err != nil {
		t.Fatalf("WriteLP() err = %v", err)
	}
	for _, line := range strings.Split(buf.String(), "\n") {
		if len(line) > lpLineWidth {
			t.Errorf("line exceeds %d characters: %q", lpLineWidth, line)
		}
	}
	if !strings.Contains(buf.String(), "<= 3") {
		t.Errorf("WriteLP() output misses right-hand side:\n%s", buf.String())
	}
}
