package dass

import "math"

// Severity is the clinical interpretation of a score.
type Severity string

const (
	Normal          Severity = "Normal"
	Mild            Severity = "Mild"
	Moderate        Severity = "Moderate"
	Severe          Severity = "Severe"
	ExtremelySevere Severity = "Extremely Severe"
)

// Severities lists the labels from least to most severe.
var Severities = []Severity{Normal, Mild, Moderate, Severe, ExtremelySevere}

// Rank orders severities; unknown labels rank below Normal.
func (s Severity) Rank() int {
	for i, v := range Severities {
		if v == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the five labels.
func (s Severity) Valid() bool { return s.Rank() >= 0 }

// MaxScore is the highest scaled subscale score.
const MaxScore = 42

type labelBand struct {
	max   int
	label Severity
}

type percentBand struct {
	max int
	pct int
}

// Upper bounds are inclusive. The last label band is open-ended.
var labelBands = map[Subscale][]labelBand{
	Depression: {{9, Normal}, {13, Mild}, {20, Moderate}, {27, Severe}, {math.MaxInt, ExtremelySevere}},
	Anxiety:    {{7, Normal}, {9, Mild}, {14, Moderate}, {19, Severe}, {math.MaxInt, ExtremelySevere}},
	Stress:     {{14, Normal}, {18, Mild}, {25, Moderate}, {33, Severe}, {math.MaxInt, ExtremelySevere}},
	// Overall is read against the 0-100 composite percentage, not a raw sum.
	Overall: {{21, Normal}, {31, Mild}, {47, Moderate}, {63, Severe}, {math.MaxInt, ExtremelySevere}},
}

// Percentage tables share the label cutoffs but close at MaxScore for every subscale.
var percentBands = map[Subscale][]percentBand{
	Depression: {{9, 20}, {13, 40}, {20, 60}, {27, 80}, {MaxScore, 100}},
	Anxiety:    {{7, 20}, {9, 40}, {14, 60}, {19, 80}, {MaxScore, 100}},
	Stress:     {{14, 20}, {18, 40}, {25, 60}, {33, 80}, {MaxScore, 100}},
}

// SeverityLabel maps a score to its band label. Zero is always Normal and scores
// beyond every finite cutoff saturate at Extremely Severe. An unknown subscale
// yields Normal.
func SeverityLabel(score int, sub Subscale) Severity {
	if score == 0 {
		return Normal
	}
	bands, ok := labelBands[sub]
	if !ok {
		return Normal
	}
	for _, b := range bands {
		if score <= b.max {
			return b.label
		}
	}
	return ExtremelySevere
}

// Percentage interpolates a score onto 0..100 across the subscale bands.
// Negative scores read as zero and scores above MaxScore saturate at 100.
func Percentage(score int, sub Subscale) int {
	bands, ok := percentBands[sub]
	if !ok {
		return 0
	}
	if score < 0 {
		score = 0
	}
	for i, b := range bands {
		if score > b.max {
			continue
		}
		if i == 0 {
			return round(float64(score) / float64(b.max) * float64(b.pct))
		}
		prev := bands[i-1]
		span := float64(b.max - prev.max)
		into := float64(score - prev.max)
		return round(float64(prev.pct) + into/span*float64(b.pct-prev.pct))
	}
	return 100
}

// OverallPercentage is the rounded mean of the three subscale percentages.
func OverallPercentage(s Scores) int {
	sum := Percentage(s.Depression, Depression) + Percentage(s.Anxiety, Anxiety) + Percentage(s.Stress, Stress)
	return round(float64(sum) / 3)
}

// round matches half-up rounding for the non-negative values used here.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
