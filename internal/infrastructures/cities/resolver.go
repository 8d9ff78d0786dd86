package cities

import (
	"sort"
	"strings"
)

// Default is the city table used when configuration provides none.
var Default = map[string]string{
	"Mumbai":    "BOM",
	"Shanghai":  "SHA",
	"Hong Kong": "HKG",
	"Singapore": "SIN",
	"Sydney":    "SYD",
	"London":    "LON",
	"Paris":     "PAR",
	"Zurich":    "ZRH",
	"Geneva":    "GVA",
	"Dubai":     "DXB",
	"Aarhus":    "AAR",
	"Wroclaw":   "WRO",
	"Budapest":  "BUD",
}

// Resolver maps attendee city names to city codes. Names match
// case-insensitively and a known code resolves to itself.
type Resolver struct {
	byName map[string]string
	codes  map[string]string
}

func NewResolver(table map[string]string) *Resolver {
	if len(table) == 0 {
		table = Default
	}

	r := &Resolver{
		byName: make(map[string]string, len(table)),
		codes:  make(map[string]string, len(table)),
	}
	for name, code := range table {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		r.byName[normalize(name)] = code
		r.codes[code] = code
	}
	return r
}

func (r *Resolver) Resolve(name string) (string, bool) {
	if code, ok := r.byName[normalize(name)]; ok {
		return code, true
	}
	code, ok := r.codes[strings.ToUpper(strings.TrimSpace(name))]
	return code, ok
}

// Codes lists every known city code in ascending order.
func (r *Resolver) Codes() []string {
	codes := make([]string, 0, len(r.codes))
	for code := range r.codes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
