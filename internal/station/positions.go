package station

import (
	"maps"
	"strings"
	"unicode"
)

// Position is a monitor location in decimal degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CentralDelhi is used for names that locate no known monitor.
var CentralDelhi = Position{Lat: 28.6139, Lon: 77.2090}

// delhiPositions places each canonical station of the Delhi table.
var delhiPositions = map[string]Position{
	"Alipur":                         {28.8155, 77.1530},
	"Anand Vihar":                    {28.6469, 77.3164},
	"Anand Vihar (301)":              {28.6469, 77.3164},
	"Ashok Vihar":                    {28.6952, 77.1818},
	"Aya Nagar":                      {28.4706, 77.1099},
	"Bawana":                         {28.7762, 77.0511},
	"Burari Crossing":                {28.7256, 77.2012},
	"CRRI Mathura Road":              {28.5512, 77.2736},
	"Chandni Chowk":                  {28.6506, 77.2303},
	"DTU":                            {28.7501, 77.1113},
	"Dr. Karni Singh Shooting Range": {28.4986, 77.2648},
	"Dwarka Sector 8":                {28.5710, 77.0719},
	"IGI Airport":                    {28.5628, 77.1180},
	"IHBAS Dilshad Garden":           {28.6812, 77.3025},
	"ITO":                            {28.6286, 77.2410},
	"Jahangirpuri":                   {28.7328, 77.1706},
	"Jawaharlal Nehru Stadium":       {28.5802, 77.2338},
	"Lodhi Road":                     {28.5918, 77.2273},
	"Major Dhyan Chand Stadium":      {28.6112, 77.2378},
	"Mandir Marg":                    {28.6364, 77.2011},
	"Mundka":                         {28.6824, 77.0307},
	"NSIT Dwarka":                    {28.6090, 77.0325},
	"Najafgarh":                      {28.5700, 76.9336},
	"Narela":                         {28.8227, 77.1019},
	"Nehru Nagar":                    {28.5679, 77.2505},
	"North Campus DU":                {28.6573, 77.1586},
	"Okhla Phase 2":                  {28.5308, 77.2713},
	"Patparganj":                     {28.6238, 77.2872},
	"Punjabi Bagh":                   {28.6740, 77.1310},
	"Pusa":                           {28.6397, 77.1460},
	"R K Puram":                      {28.5633, 77.1869},
	"Rohini":                         {28.7325, 77.1200},
	"Shadipur":                       {28.6515, 77.1473},
	"Sirifort":                       {28.5504, 77.2159},
	"Sonia Vihar":                    {28.7105, 77.2495},
	"Sri Aurobindo Marg":             {28.5312, 77.1902},
	"Vivek Vihar":                    {28.6723, 77.3152},
	"Wazirpur":                       {28.6998, 77.1654},
}

// DelhiPositions returns a copy of the built-in positions keyed by
// canonical name.
func DelhiPositions() map[string]Position {
	return maps.Clone(delhiPositions)
}

// Locator places free-text station names on the map by resolving them
// against a registry.
type Locator struct {
	registry  *Registry
	positions map[string]Position
}

// NewLocator pairs a registry with positions keyed by canonical name.
func NewLocator(registry *Registry, positions map[string]Position) *Locator {
	byName := make(map[string]Position, len(positions))
	for name, p := range positions {
		byName[normalize(name)] = p
	}
	return &Locator{registry: registry, positions: byName}
}

// DefaultLocator locates stations of the built-in Delhi registry.
func DefaultLocator() *Locator {
	return NewLocator(Default(), delhiPositions)
}

// Locate returns the position of the monitor name resolves to. A containment
// match only counts when it falls on word boundaries, so "Delhi monitoring
// site" locates nothing even though Resolve finds "ito" inside it.
func (l *Locator) Locate(name string) (Entry, Position, bool) {
	e, err := l.registry.Resolve(name)
	if err != nil || !anchored(name, e) {
		return Entry{}, Position{}, false
	}
	p, ok := l.positions[normalize(e.CanonicalName)]
	if !ok {
		return Entry{}, Position{}, false
	}
	return e, p, true
}

func anchored(q string, e Entry) bool {
	nq := normalize(q)
	if nq == normalize(e.CanonicalName) {
		return true
	}
	for _, alias := range e.Aliases {
		if normalize(alias) == nq {
			return true
		}
	}

	qw, nw := " "+words(q)+" ", " "+words(e.CanonicalName)+" "
	return strings.Contains(qw, nw) || strings.Contains(nw, qw)
}

// words lowercases s and keeps only its letter and digit runs.
func words(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}
