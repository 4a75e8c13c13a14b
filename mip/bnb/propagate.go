package bnb

import (
	"git.solver4all.com/azaryc2s/mipbench/mip"
)

func (se *search) assign(j int, v int8) {
	se.val[j] = v
	se.trail = append(se.trail, j)
}

// undo frees every variable fixed after the trail had length mark.
func (se *search) undo(mark int) {
	for _, j := range se.trail[mark:] {
		se.val[j] = free
	}
	se.trail = se.trail[:mark]
}

// propagate fixes variables implied by the rows in start and, transitively,
// by every row touching a newly fixed variable. It returns false on a
// conflict; the fixings made so far stay on the trail.
func (se *search) propagate(start []int) bool {
	se.queue = se.queue[:0]
	for _, r := range start {
		if !se.inQueue[r] {
			se.inQueue[r] = true
			se.queue = append(se.queue, r)
		}
	}
	for len(se.queue) > 0 {
		r := se.queue[len(se.queue)-1]
		se.queue = se.queue[:len(se.queue)-1]
		se.inQueue[r] = false

		mark := len(se.trail)
		if !se.propagateRow(&se.pr.rows[r]) {
			for _, q := range se.queue {
				se.inQueue[q] = false
			}
			se.queue = se.queue[:0]
			return false
		}
		for _, j := range se.trail[mark:] {
			for _, r2 := range se.pr.varRows[j] {
				if !se.inQueue[r2] {
					se.inQueue[r2] = true
					se.queue = append(se.queue, r2)
				}
			}
		}
	}
	return true
}

// activity returns the smallest and largest value the row's left-hand side
// can take under the current fixings.
func (se *search) activity(c *mip.Constraint) (lo, hi float64) {
	for _, t := range c.Terms {
		switch se.val[t.Var] {
		case free:
			if t.Coeff < 0 {
				lo += t.Coeff
			} else {
				hi += t.Coeff
			}
		case 1:
			lo += t.Coeff
			hi += t.Coeff
		}
	}
	return lo, hi
}

func (se *search) propagateRow(c *mip.Constraint) bool {
	lo, hi := se.activity(c)
	upper := c.Sense == mip.LessOrEqual || c.Sense == mip.Equal
	lower := c.Sense == mip.GreaterOrEqual || c.Sense == mip.Equal
	if upper && lo > c.RHS+actTol {
		return false
	}
	if lower && hi < c.RHS-actTol {
		return false
	}
	for _, t := range c.Terms {
		if se.val[t.Var] != free {
			continue
		}
		a := t.Coeff
		if upper {
			// Moving the variable off its cheapest value raises lo by |a|.
			if a > 0 && lo+a > c.RHS+actTol {
				se.assign(t.Var, 0)
				hi -= a
				continue
			}
			if a < 0 && lo-a > c.RHS+actTol {
				se.assign(t.Var, 1)
				hi -= -a
				continue
			}
		}
		if lower {
			if a > 0 && hi-a < c.RHS-actTol {
				se.assign(t.Var, 1)
				lo += a
				continue
			}
			if a < 0 && hi+a < c.RHS-actTol {
				se.assign(t.Var, 0)
				lo -= a
				continue
			}
		}
	}
	if upper && lo > c.RHS+actTol {
		return false
	}
	if lower && hi < c.RHS-actTol {
		return false
	}
	return true
}
