// Package tz wraps the IANA time zone database for user input.
package tz

import (
	_ "embed"
	"sort"
	"strings"
	"sync"
	"time"
)

//go:embed zone.tab
var zoneTab string

var (
	countriesOnce sync.Once
	byCountry     map[string][]string
)

func loadCountries() {
	byCountry = make(map[string][]string)
	for _, line := range strings.Split(zoneTab, "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// country code, coordinates, zone name, comments
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}
		code := strings.ToUpper(fields[0])
		byCountry[code] = append(byCountry[code], fields[2])
	}
	for code := range byCountry {
		sort.Strings(byCountry[code])
	}
}

// ZonesForCountry returns the zone names used in the given ISO 3166 country,
// sorted. The lookup is case-insensitive.
func ZonesForCountry(code string) []string {
	countriesOnce.Do(loadCountries)
	zones := byCountry[strings.ToUpper(strings.TrimSpace(code))]
	out := make([]string, len(zones))
	copy(out, zones)
	return out
}

// Valid reports whether name is a canonical IANA zone identifier.
func Valid(name string) bool {
	if name == "" || name == "Local" {
		return false
	}
	loc, err := time.LoadLocation(name)
	return err == nil && loc.String() != ""
}

// In converts t to the named zone, falling back to UTC for unknown names.
func In(t time.Time, name string) time.Time {
	loc, err := time.LoadLocation(name)
	if err != nil || name == "" {
		return t.UTC()
	}
	return t.In(loc)
}
