package recommend

import (
	"fmt"

	"github.com/soaringjerry/Sanctuary/internal/dass"
)

// Strategy selects how severities become genres.
type Strategy string

const (
	// PerSubscale maps each subscale independently and concatenates the results.
	PerSubscale Strategy = "per_subscale"
	// MaxSeverity is the earlier player behavior: only the most severe subscale
	// contributes genres.
	MaxSeverity Strategy = "max_severity"
)

// ParseStrategy accepts "" as PerSubscale.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", PerSubscale:
		return PerSubscale, nil
	case MaxSeverity:
		return MaxSeverity, nil
	}
	return "", fmt.Errorf("unknown recommendation strategy %q", s)
}

const secondaryCount = 2

var primaryGenre = map[dass.Subscale]map[dass.Severity]Genre{
	dass.Depression: {
		dass.Normal:          Lofi,
		dass.Mild:            Instrumental,
		dass.Moderate:        Ambient,
		dass.Severe:          Nature,
		dass.ExtremelySevere: Atmospheric,
	},
	dass.Anxiety: {
		dass.Normal:          Lofi,
		dass.Mild:            Nature,
		dass.Moderate:        Ambient,
		dass.Severe:          Atmospheric,
		dass.ExtremelySevere: Instrumental,
	},
	dass.Stress: {
		dass.Normal:          Lofi,
		dass.Mild:            Nature,
		dass.Moderate:        Instrumental,
		dass.Severe:          Ambient,
		dass.ExtremelySevere: Atmospheric,
	},
}

// Secondary genres are taken from these lists in order, skipping the primary.
var orderedGenres = map[dass.Subscale][]Genre{
	dass.Depression: {Lofi, Instrumental, Ambient, Nature, Atmospheric, Sentimental, Magnificent},
	dass.Anxiety:    {Lofi, Nature, Ambient, Atmospheric, Instrumental, Dark, Energizing},
	dass.Stress:     {Lofi, Nature, Instrumental, Ambient, Atmospheric, Sentimental, Magnificent},
}

// GenresFor returns the primary genre of a subscale followed by its two secondaries.
// Unknown labels read as Normal.
func GenresFor(sub dass.Subscale, sev dass.Severity) []Genre {
	table, ok := primaryGenre[sub]
	if !ok {
		return nil
	}
	primary, ok := table[sev]
	if !ok {
		primary = table[dass.Normal]
	}
	out := make([]Genre, 0, 1+secondaryCount)
	out = append(out, primary)
	for _, g := range orderedGenres[sub] {
		if len(out) == 1+secondaryCount {
			break
		}
		if g != primary {
			out = append(out, g)
		}
	}
	return out
}

// RecommendGenres concatenates the depression, anxiety and stress genre lists.
// Duplicates across subscales are kept so that shared genres weigh more.
func RecommendGenres(depression, anxiety, stress dass.Severity) []Genre {
	out := make([]Genre, 0, 3*(1+secondaryCount))
	out = append(out, GenresFor(dass.Depression, depression)...)
	out = append(out, GenresFor(dass.Anxiety, anxiety)...)
	out = append(out, GenresFor(dass.Stress, stress)...)
	return out
}

// RecommendGenresByMaxSeverity returns the genres of the single most severe
// subscale. Ties go to depression, then anxiety, then stress.
func RecommendGenresByMaxSeverity(depression, anxiety, stress dass.Severity) []Genre {
	sub, sev := dass.Depression, depression
	if anxiety.Rank() > sev.Rank() {
		sub, sev = dass.Anxiety, anxiety
	}
	if stress.Rank() > sev.Rank() {
		sub, sev = dass.Stress, stress
	}
	return GenresFor(sub, sev)
}

// ForResult applies a strategy to an assessment.
func ForResult(s Strategy, r dass.Result) []Genre {
	dep, anx, str := r.Label(dass.Depression), r.Label(dass.Anxiety), r.Label(dass.Stress)
	if s == MaxSeverity {
		return RecommendGenresByMaxSeverity(dep, anx, str)
	}
	return RecommendGenres(dep, anx, str)
}
