package pricing

import "math"

// Bounds are the limits of the budget slider
type Bounds struct {
	Lower int `json:"lower"`
	Upper int `json:"upper"`
	Step  int `json:"step"`
}

// Range is a budget range selected on the slider
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// DefaultBounds are the slider limits used by the quote wizard
var DefaultBounds = Bounds{Lower: 500, Upper: 50000, Step: 500}

func (b Bounds) normalize() Bounds {
	if b.Step <= 0 {
		b.Step = 1
	}
	if b.Upper < b.Lower {
		b.Lower, b.Upper = b.Upper, b.Lower
	}
	if span(b.Lower, b.Upper) < uint(b.Step) {
		if b.Lower > math.MaxInt-b.Step {
			b.Lower = math.MaxInt - b.Step
		}
		b.Upper = b.Lower + b.Step
	}
	return b
}

// span is hi-lo for lo <= hi, computed without overflowing int
func span(lo, hi int) uint {
	return uint(hi) - uint(lo)
}

func (b Bounds) snap(v int) int {
	if v <= b.Lower {
		return b.Lower
	}
	if v >= b.Upper {
		return b.Upper
	}
	offset := span(b.Lower, v)
	step := uint(b.Step)
	grid := offset / step * step
	if offset-grid >= step-step/2 {
		if span(b.Lower, b.Upper)-grid < step {
			return b.Upper
		}
		grid += step
	}
	return int(uint(b.Lower) + grid)
}

// Clamp pulls both ends of r into b, snaps them to the step grid and keeps
// Min strictly below Max. When Min reaches Max it backs off one step below
// Max; if that would leave the bounds, the range becomes the first step.
// Any int input is accepted, including the extremes of the type.
func Clamp(r Range, b Bounds) Range {
	b = b.normalize()

	lo := b.snap(r.Min)
	hi := b.snap(r.Max)

	if lo >= hi {
		if span(b.Lower, hi) >= uint(b.Step) {
			lo = hi - b.Step
		} else {
			lo = b.Lower
			hi = b.Lower + b.Step
		}
	}

	return Range{Min: lo, Max: hi}
}
