// Package mood derives a discrete color classification from the sentiment
// score of message content.
package mood

// Scorer produces an integer sentiment score for a piece of text.
// Positive means positive sentiment.
type Scorer interface {
	Score(text string) (int, error)
}

// Color buckets, checked highest-to-lowest. Boundaries are exclusive on the
// lower end.
const (
	ColorStrongPositive = "#4ade80"
	ColorPositive       = "#a3e635"
	ColorNeutral        = "#facc15"
	ColorNegative       = "#fb923c"
	ColorStrongNegative = "#f87171"
)

// Classify maps text to a mood color. A scorer failure is treated as score 0;
// classification never fails the send path.
func Classify(text string, s Scorer) string {
	score := 0
	if s != nil {
		if v, err := s.Score(text); err == nil {
			score = v
		}
	}
	switch {
	case score > 3:
		return ColorStrongPositive
	case score > 1:
		return ColorPositive
	case score > -1:
		return ColorNeutral
	case score > -3:
		return ColorNegative
	default:
		return ColorStrongNegative
	}
}
