// Package attribution estimates the share of Delhi air pollution coming from
// traffic, industry, construction, agriculture and other sources using a
// cascade of fixed rules over location, pollutant, weather and calendar inputs.
package attribution

import (
	"bytes"
	"math"
	"strconv"
)

// Category is one of the five pollution source categories.
type Category int

const (
	Traffic Category = iota
	Industry
	Construction
	Agriculture
	Others

	numCategories = 5
)

var categoryNames = [numCategories]string{"traffic", "industry", "construction", "agriculture", "others"}

func (c Category) String() string {
	if c < 0 || c >= numCategories {
		return "unknown"
	}
	return categoryNames[c]
}

// Categories lists all categories in output order.
func Categories() []Category {
	return []Category{Traffic, Industry, Construction, Agriculture, Others}
}

// Split holds one value per category, indexed by Category. It is used both for
// percentage splits and for signed deltas.
type Split [numCategories]float64

// Add returns the element-wise sum of s and d.
func (s Split) Add(d Split) Split {
	for i := range s {
		s[i] += d[i]
	}
	return s
}

// Total sums all categories.
func (s Split) Total() float64 {
	var t float64
	for _, v := range s {
		t += v
	}
	return t
}

// Map returns the split keyed by category name.
func (s Split) Map() map[string]float64 {
	m := make(map[string]float64, numCategories)
	for i, v := range s {
		m[categoryNames[i]] = v
	}
	return m
}

// MarshalJSON encodes the split as an object in category order.
func (s Split) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(categoryNames[i])
		buf.WriteString(`":`)
		buf.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MinShare is the smallest percentage any category may end up with.
const MinShare = 5.0

// Finalize turns a raw accumulator into percentages. Every category is first
// floored at MinShare, with NaN and infinities counting as MinShare, and the
// split scaled to 100. Categories that the scaling
// pushes back under MinShare are pinned there and the remaining ones share
// what is left. Values are rounded to tenths by largest remainder so the
// result sums to exactly 100.0.
func Finalize(raw Split) Split {
	var out Split
	for i, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < MinShare {
			v = MinShare
		}
		out[i] = v
	}

	var pinned [numCategories]bool
	for {
		var free float64
		budget := 100.0
		for i, v := range out {
			if pinned[i] {
				budget -= MinShare
			} else {
				free += v
			}
		}

		changed := false
		for i := range out {
			if pinned[i] {
				out[i] = MinShare
				continue
			}
			out[i] = out[i] / free * budget
			if out[i] < MinShare {
				pinned[i] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return roundTenths(out)
}

// roundTenths rounds s to one decimal while keeping the total at 100.0.
func roundTenths(s Split) Split {
	const units = 1000

	var (
		floors [numCategories]int
		rems   [numCategories]float64
		sum    int
	)
	for i, v := range s {
		scaled := v * 10
		floors[i] = int(math.Floor(scaled + 1e-9))
		rems[i] = scaled - float64(floors[i])
		sum += floors[i]
	}

	for left := units - sum; left > 0; left-- {
		best := -1
		for i := range rems {
			if best < 0 || rems[i] > rems[best] {
				best = i
			}
		}
		floors[best]++
		rems[best] = -1
	}

	var out Split
	for i, f := range floors {
		out[i] = float64(f) / 10
	}
	return out
}
