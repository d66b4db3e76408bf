package mood

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// LexiconScorer sums weighted word matches over normalized text. It is the
// default in-process Scorer; deployments with an external sentiment service
// can swap in their own implementation.
type LexiconScorer struct {
	matcher *goahocorasick.Machine
	weights map[string]int
}

// NewLexiconScorer builds the Aho-Corasick automaton from the built-in
// weighted lexicon.
func NewLexiconScorer() (*LexiconScorer, error) {
	patterns := make([][]rune, 0, len(defaultLexicon))
	for word := range defaultLexicon {
		patterns = append(patterns, []rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &LexiconScorer{matcher: m, weights: defaultLexicon}, nil
}

// Score sums the weights of every whole-word lexicon hit in text.
func (s *LexiconScorer) Score(text string) (int, error) {
	norm := normalize(text)
	if len(norm) == 0 {
		return 0, nil
	}

	score := 0
	for _, span := range s.matcher.MultiPatternSearch(norm, false) {
		start := span.Pos
		end := start + len(span.Word)
		if !isBoundary(norm, start-1) || !isBoundary(norm, end) {
			continue
		}
		score += s.weights[string(span.Word)]
	}
	return score, nil
}

// normalize lowercases the text and flattens punctuation, symbols and leet
// spellings so word matching stays boundary-aware.
func normalize(input string) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		r = simplifyRune(r)
		if unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r) {
			r = ' '
		}
		out = append(out, unicode.ToLower(r))
	}
	return out
}

func isBoundary(runes []rune, i int) bool {
	if i < 0 || i >= len(runes) {
		return true
	}
	return runes[i] == ' '
}

// simplifyRune maps common leet speak characters back to their standard
// alphabet counterparts.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

// defaultLexicon carries AFINN-style weights in [-5, 5].
var defaultLexicon = map[string]int{
	"amazing":     4,
	"awesome":     4,
	"fantastic":   4,
	"wonderful":   4,
	"superb":      5,
	"outstanding": 5,
	"brilliant":   4,
	"excellent":   3,
	"great":       3,
	"love":        3,
	"loved":       3,
	"loves":       3,
	"adore":       3,
	"happy":       3,
	"joy":         3,
	"delighted":   3,
	"thrilled":    5,
	"perfect":     3,
	"beautiful":   3,
	"best":        3,
	"good":        3,
	"glad":        3,
	"fun":         4,
	"nice":        3,
	"like":        2,
	"likes":       2,
	"thanks":      2,
	"thank":       2,
	"welcome":     2,
	"cool":        1,
	"fine":        2,
	"ok":          1,
	"okay":        1,
	"interesting": 2,
	"meh":         -1,
	"boring":      -3,
	"tired":       -2,
	"sad":         -2,
	"unhappy":     -2,
	"annoying":    -2,
	"annoyed":     -2,
	"bad":         -3,
	"worse":       -3,
	"worst":       -3,
	"angry":       -3,
	"upset":       -2,
	"broken":      -1,
	"useless":     -2,
	"ugly":        -3,
	"stupid":      -2,
	"dumb":        -3,
	"hate":        -3,
	"hated":       -3,
	"hates":       -3,
	"horrible":    -3,
	"terrible":    -3,
	"awful":       -3,
	"disgusting":  -3,
	"furious":     -4,
	"miserable":   -3,
	"disaster":    -2,
	"catastrophe": -3,
	"dreadful":    -3,
	"abysmal":     -5,
}
