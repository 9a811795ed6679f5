package attribution

import "strings"

// MatchKind describes how a station name was matched to a location profile.
type MatchKind string

const (
	MatchExact     MatchKind = "exact"
	MatchSubstring MatchKind = "substring"
	MatchWord      MatchKind = "word"
	MatchDefault   MatchKind = "default"
)

// Location is the typical source mix of a Delhi neighbourhood.
type Location struct {
	Key  string
	Base Split
}

// DefaultLocation is used when a station matches no known neighbourhood.
var DefaultLocation = Location{
	Key:  "delhi",
	Base: Split{30, 25, 15, 20, 10},
}

var locations = []Location{
	{"anand vihar", Split{40, 25, 15, 10, 10}},
	{"ito", Split{45, 15, 15, 10, 15}},
	{"punjabi bagh", Split{35, 20, 20, 15, 10}},
	{"rohini", Split{30, 20, 20, 20, 10}},
	{"dwarka", Split{30, 15, 25, 20, 10}},
	{"okhla", Split{25, 40, 15, 10, 10}},
	{"wazirpur", Split{20, 45, 15, 10, 10}},
	{"bawana", Split{15, 45, 15, 15, 10}},
	{"narela", Split{15, 40, 15, 20, 10}},
	{"mundka", Split{20, 40, 15, 15, 10}},
	{"jahangirpuri", Split{30, 30, 15, 15, 10}},
	{"r k puram", Split{35, 15, 20, 15, 15}},
	{"lodhi road", Split{35, 10, 15, 20, 20}},
	{"igi airport", Split{40, 10, 15, 15, 20}},
	{"chandni chowk", Split{40, 15, 10, 10, 25}},
	{"alipur", Split{20, 15, 15, 35, 15}},
	{"najafgarh", Split{20, 15, 15, 35, 15}},
	{"pusa", Split{30, 15, 15, 25, 15}},
}

// LookupLocation finds the source profile for a station name. It tries an
// exact match, then containment either way (inputs shorter than three
// letters only match by containing a key), then any shared word of three or
// more letters. Within a tier the first profile in table order wins.
//
// The profile only seeds the split. Where readings are fetched is decided
// by the station Locator.
func LookupLocation(stationName string) (Location, MatchKind) {
	name := strings.ToLower(strings.TrimSpace(stationName))
	if name == "" {
		return DefaultLocation, MatchDefault
	}

	for _, loc := range locations {
		if loc.Key == name {
			return loc, MatchExact
		}
	}

	for _, loc := range locations {
		if strings.Contains(name, loc.Key) || (len(name) >= 3 && strings.Contains(loc.Key, name)) {
			return loc, MatchSubstring
		}
	}

	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == ',' || r == '-' || r == '_' || r == '(' || r == ')'
	})
	for _, loc := range locations {
		for _, w := range words {
			if len(w) < 3 {
				continue
			}
			for _, kw := range strings.Fields(loc.Key) {
				if kw == w {
					return loc, MatchWord
				}
			}
		}
	}

	return DefaultLocation, MatchDefault
}
