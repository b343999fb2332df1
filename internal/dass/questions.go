// Package dass scores the DASS-21 mood questionnaire: raw subscale totals,
// clinical severity labels and normalized 0-100 severity percentages.
package dass

// Subscale identifies one of the three clinical dimensions of the questionnaire.
type Subscale string

const (
	Depression Subscale = "depression"
	Anxiety    Subscale = "anxiety"
	Stress     Subscale = "stress"
	// Overall keys the composite table. It is not a questionnaire subscale.
	Overall Subscale = "overall"
)

// Subscales lists the questionnaire subscales in reporting order.
var Subscales = []Subscale{Depression, Anxiety, Stress}

// Question is one questionnaire item.
type Question struct {
	ID          int      `json:"id"`
	Subscale    Subscale `json:"subscale"`
	Prompt      string   `json:"prompt"`
	Description string   `json:"description"`
}

const (
	// QuestionCount is the number of items in a complete answer set.
	QuestionCount = 21
	// MinAnswer and MaxAnswer bound a single response.
	MinAnswer = 0
	MaxAnswer = 3
	// ScaleFactor converts the short form into full-form score units.
	ScaleFactor = 2
)

// AnswerLabels are the response options shown for every question, indexed by value.
var AnswerLabels = [...]string{
	"Did not apply to me at all",
	"Applied to me to some degree, or some of the time",
	"Applied to me to a considerable degree or a good part of time",
	"Applied to me very much or most of the time",
}

var questions = []Question{
	{1, Stress, "I found it hard to wind down", "Difficulty relaxing after a busy or tense day."},
	{2, Anxiety, "I was aware of dryness of my mouth", "A dry mouth without an obvious physical cause."},
	{3, Depression, "I couldn't seem to experience any positive feeling at all", "Things that normally bring joy felt flat."},
	{4, Anxiety, "I experienced breathing difficulty", "Rapid breathing or breathlessness without physical exertion."},
	{5, Depression, "I found it difficult to work up the initiative to do things", "Starting everyday tasks felt like a struggle."},
	{6, Stress, "I tended to over-react to situations", "Small events triggered strong reactions."},
	{7, Anxiety, "I experienced trembling", "Shaking in the hands or elsewhere."},
	{8, Stress, "I felt that I was using a lot of nervous energy", "Feeling wound up or on edge for long periods."},
	{9, Anxiety, "I was worried about situations in which I might panic and make a fool of myself", "Avoiding places or moments out of fear of panicking."},
	{10, Depression, "I felt that I had nothing to look forward to", "The future felt empty or pointless."},
	{11, Stress, "I found myself getting agitated", "Restlessness that was hard to settle."},
	{12, Stress, "I found it difficult to relax", "Unable to let go of tension even when resting."},
	{13, Depression, "I felt down-hearted and blue", "Persistent sadness or low mood."},
	{14, Stress, "I was intolerant of anything that kept me from getting on with what I was doing", "Interruptions felt unbearable."},
	{15, Anxiety, "I felt I was close to panic", "A sense that panic was about to take over."},
	{16, Depression, "I was unable to become enthusiastic about anything", "Nothing sparked interest or excitement."},
	{17, Depression, "I felt I wasn't worth much as a person", "Low self-worth or harsh self-judgement."},
	{18, Stress, "I felt that I was rather touchy", "Easily irritated or offended."},
	{19, Anxiety, "I was aware of the action of my heart in the absence of physical exertion", "A racing or skipping heartbeat while at rest."},
	{20, Anxiety, "I felt scared without any good reason", "Fear that had no clear cause."},
	{21, Depression, "I felt that life was meaningless", "Life seemed to lack purpose."},
}

var subscaleByID = func() map[int]Subscale {
	m := make(map[int]Subscale, len(questions))
	for _, q := range questions {
		m[q.ID] = q.Subscale
	}
	return m
}()

// Questions returns a copy of the static questionnaire catalog in presentation order.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

// SubscaleOf reports the subscale a question id belongs to.
func SubscaleOf(id int) (Subscale, bool) {
	s, ok := subscaleByID[id]
	return s, ok
}
