// Package synthetic provides the deterministic random source used when live
// upstream readings are unavailable.
package synthetic

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strings"
	"time"
)

// IST is India Standard Time. Daily seeds and time-of-day rules use it.
var IST = time.FixedZone("IST", 5*3600+30*60)

// Source is a seeded generator. The same station on the same IST day always
// produces the same sequence.
type Source struct {
	rng *rand.Rand
}

// NewSource seeds a generator from the lower-cased key and the IST calendar
// date of t. Extra salts separate independent streams for the same key.
func NewSource(key string, t time.Time, salts ...string) *Source {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(key))))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(t.In(IST).Format(time.DateOnly)))
	for _, s := range salts {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(s))
	}
	seed := h.Sum64()
	return &Source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Between returns a value in [lo, hi).
func (s *Source) Between(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
