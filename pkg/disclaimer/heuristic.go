package disclaimer

import (
	"math"
	"strings"
	"unicode/utf8"

	f "github.com/multimediallc/copyright-headers/pkg/functional"
	"github.com/multimediallc/copyright-headers/pkg/textedit"
)

// Heuristic scores comment blocks for how much they look like a disclaimer.
type Heuristic struct {
	// MinLines rejects shorter blocks.
	MinLines int
	// Threshold is the lowest score accepted as a disclaimer.
	Threshold float64
	// MustHave rejects blocks containing none of these tokens.
	MustHave []string
	Keywords []string
	// KeyPhrases are longer literal phrases, weighted higher than keywords.
	KeyPhrases      []string
	KeywordWeight   float64
	KeyPhraseWeight float64
	// StdDevWeight multiplies the standard deviation of line lengths.
	// It is negative: ragged blocks are unlikely to be wrapped legal prose.
	StdDevWeight float64
	// MinMeasuredLength excludes short lines, such as titles and separators,
	// from the line length statistics.
	MinMeasuredLength int
}

func DefaultHeuristic() Heuristic {
	return Heuristic{
		MinLines:  10,
		Threshold: 8.0,
		MustHave:  []string{"ABC", "XYZ", "Advanced ABC"},
		Keywords:  []string{"copyright", "disclaimer", "intellectual property", "copyright notice"},
		KeyPhrases: []string{
			"MUST BE RETAINED AS PART OF THIS FILE",
			"This file contains confidential and proprietary information",
			`MADE AVAILABLE "AS IS"`,
		},
		KeywordWeight:     2,
		KeyPhraseWeight:   10,
		StdDevWeight:      -1,
		MinMeasuredLength: 20,
	}
}

// Score rates block. Blocks that are too short or lack every must-have
// token score negative infinity.
func (h Heuristic) Score(block []string) float64 {
	if len(block) < h.MinLines {
		return math.Inf(-1)
	}
	text := strings.ToLower(strings.Join(f.Map(block, strings.TrimSpace), " "))

	contains := func(s string) bool {
		return strings.Contains(text, s)
	}
	if len(f.Filtered(lowered(h.MustHave), contains)) == 0 {
		return math.Inf(-1)
	}

	score := 0.0
	score += h.KeywordWeight * float64(len(f.Filtered(lowered(h.Keywords), contains)))
	score += h.KeyPhraseWeight * float64(len(f.Filtered(lowered(h.KeyPhrases), contains)))
	score += h.StdDevWeight * lengthStdDev(block, h.MinMeasuredLength)
	return score
}

func lowered(tokens []string) []string {
	return f.RemoveDuplicates(f.Map(tokens, strings.ToLower))
}

// lengthStdDev is the population standard deviation of the lengths of the
// lines longer than minLength, or 0 when there are none.
func lengthStdDev(block []string, minLength int) float64 {
	var lengths []float64
	for _, line := range block {
		if n := utf8.RuneCountInString(textedit.TrimEOL(line)); n > minLength {
			lengths = append(lengths, float64(n))
		}
	}
	if len(lengths) == 0 {
		return 0
	}

	mean := 0.0
	for _, n := range lengths {
		mean += n
	}
	mean /= float64(len(lengths))

	variance := 0.0
	for _, n := range lengths {
		variance += (n - mean) * (n - mean)
	}
	return math.Sqrt(variance / float64(len(lengths)))
}
