package dass

import (
	"fmt"
	"sort"
	"strings"
)

// Answers maps a question id (1..21) to a response in 0..3.
type Answers map[int]int

// Scores holds the scaled subscale totals, each in 0..42.
type Scores struct {
	Depression int `json:"depression"`
	Anxiety    int `json:"anxiety"`
	Stress     int `json:"stress"`
}

// Of returns the score for a subscale. Unknown subscales yield 0.
func (s Scores) Of(sub Subscale) int {
	switch sub {
	case Depression:
		return s.Depression
	case Anxiety:
		return s.Anxiety
	case Stress:
		return s.Stress
	}
	return 0
}

// IsZero reports whether no symptom was recorded on any subscale.
func (s Scores) IsZero() bool {
	return s.Depression == 0 && s.Anxiety == 0 && s.Stress == 0
}

// ComputeScores sums the answers of each subscale and applies the scale factor.
// Missing answers count as zero, ids outside the catalog are ignored and
// responses outside 0..3 are clamped.
func ComputeScores(answers Answers) Scores {
	var raw Scores
	for _, q := range questions {
		v := clampAnswer(answers[q.ID])
		switch q.Subscale {
		case Depression:
			raw.Depression += v
		case Anxiety:
			raw.Anxiety += v
		case Stress:
			raw.Stress += v
		}
	}
	return Scores{
		Depression: raw.Depression * ScaleFactor,
		Anxiety:    raw.Anxiety * ScaleFactor,
		Stress:     raw.Stress * ScaleFactor,
	}
}

func clampAnswer(v int) int {
	if v < MinAnswer {
		return MinAnswer
	}
	if v > MaxAnswer {
		return MaxAnswer
	}
	return v
}

// IncompleteError lists what is wrong with a strictly validated answer set.
type IncompleteError struct {
	Missing    []int
	OutOfRange []int
	Unknown    []int
}

func (e *IncompleteError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing answers for questions %v", e.Missing))
	}
	if len(e.OutOfRange) > 0 {
		parts = append(parts, fmt.Sprintf("answers out of range for questions %v", e.OutOfRange))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("unknown questions %v", e.Unknown))
	}
	return strings.Join(parts, "; ")
}

// Validate rejects incomplete or out-of-range answer sets. ComputeScores does not
// require it; callers that want to fail closed run it first.
func Validate(answers Answers) error {
	e := &IncompleteError{}
	for _, q := range questions {
		v, ok := answers[q.ID]
		if !ok {
			e.Missing = append(e.Missing, q.ID)
			continue
		}
		if v < MinAnswer || v > MaxAnswer {
			e.OutOfRange = append(e.OutOfRange, q.ID)
		}
	}
	for id := range answers {
		if _, ok := subscaleByID[id]; !ok {
			e.Unknown = append(e.Unknown, id)
		}
	}
	sort.Ints(e.Unknown)
	if len(e.Missing) == 0 && len(e.OutOfRange) == 0 && len(e.Unknown) == 0 {
		return nil
	}
	return e
}
