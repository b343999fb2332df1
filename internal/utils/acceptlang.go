package utils

import (
	"sort"
	"strconv"
	"strings"
)

// SupportedLocales are the locales the server has messages for.
var SupportedLocales = []string{"en", "zh"}

// DefaultLocale is used when nothing in the request matches.
const DefaultLocale = "en"

// DetermineLocale picks the response locale. An explicit query value wins, then
// the highest weighted Accept-Language entry, then def. Region subtags fall
// back to their base language (en-US -> en).
func DetermineLocale(queryLang, acceptLang string, supported []string, def string) string {
	sup := make(map[string]struct{}, len(supported))
	for _, s := range supported {
		sup[strings.ToLower(s)] = struct{}{}
	}
	pick := func(lang string) (string, bool) {
		l := strings.ToLower(strings.TrimSpace(lang))
		if l == "" {
			return "", false
		}
		if _, ok := sup[l]; ok {
			return l, true
		}
		if base, _, found := strings.Cut(l, "-"); found {
			if _, ok := sup[base]; ok {
				return base, true
			}
		}
		return "", false
	}

	if v, ok := pick(queryLang); ok {
		return v
	}

	type cand struct {
		lang string
		q    float64
	}
	var cands []cand
	for _, part := range strings.Split(acceptLang, ",") {
		lang, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		q := parseQuality(params)
		if q <= 0 {
			continue
		}
		if l, ok := pick(lang); ok {
			cands = append(cands, cand{lang: l, q: q})
		}
	}
	if len(cands) > 0 {
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].q > cands[j].q })
		return cands[0].lang
	}
	if v, ok := pick(def); ok {
		return v
	}
	if len(supported) > 0 {
		return strings.ToLower(supported[0])
	}
	return DefaultLocale
}

// parseQuality reads the q parameter; absent or malformed weights count as 1.
func parseQuality(params string) float64 {
	for _, p := range strings.Split(params, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || strings.TrimSpace(k) != "q" {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || q > 1 {
			return 1
		}
		return q
	}
	return 1
}
