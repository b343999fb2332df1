package dass

// Result is the full interpretation of one submission.
type Result struct {
	Scores      Scores                `json:"scores"`
	Labels      map[Subscale]Severity `json:"labels"`
	Percentages map[Subscale]int      `json:"percentages"`
	// Overall is the composite percentage; OverallLabel reads it against the overall table.
	Overall      int      `json:"overall"`
	OverallLabel Severity `json:"overall_label"`
}

// Label returns the severity of one subscale.
func (r Result) Label(sub Subscale) Severity {
	if l, ok := r.Labels[sub]; ok {
		return l
	}
	return Normal
}

// Assess derives labels and percentages from scaled scores.
func Assess(s Scores) Result {
	r := Result{
		Scores:      s,
		Labels:      make(map[Subscale]Severity, len(Subscales)),
		Percentages: make(map[Subscale]int, len(Subscales)),
	}
	for _, sub := range Subscales {
		r.Labels[sub] = SeverityLabel(s.Of(sub), sub)
		r.Percentages[sub] = Percentage(s.Of(sub), sub)
	}
	r.Overall = OverallPercentage(s)
	r.OverallLabel = SeverityLabel(r.Overall, Overall)
	return r
}
