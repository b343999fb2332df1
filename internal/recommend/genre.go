// Package recommend turns severity labels into a ranked genre list and draws a
// bounded playlist from the track catalog.
package recommend

import "strings"

// Genre is one of the nine audio mood tags a track can carry.
type Genre string

const (
	Ambient      Genre = "Ambient"
	Atmospheric  Genre = "Atmospheric"
	Dark         Genre = "Dark"
	Energizing   Genre = "Energizing"
	Instrumental Genre = "Instrumental"
	Lofi         Genre = "Lofi"
	Magnificent  Genre = "Magnificent"
	Nature       Genre = "Nature"
	Sentimental  Genre = "Sentimental"
)

var allGenres = []Genre{Ambient, Atmospheric, Dark, Energizing, Instrumental, Lofi, Magnificent, Nature, Sentimental}

// Genres returns the closed tag set in alphabetical order.
func Genres() []Genre {
	return append([]Genre(nil), allGenres...)
}

// Valid reports whether g is in the tag set. Matching is exact.
func (g Genre) Valid() bool {
	for _, v := range allGenres {
		if v == g {
			return true
		}
	}
	return false
}

// ParseGenre resolves a tag case-insensitively.
func ParseGenre(s string) (Genre, bool) {
	s = strings.TrimSpace(s)
	for _, v := range allGenres {
		if strings.EqualFold(string(v), s) {
			return v, true
		}
	}
	return "", false
}
