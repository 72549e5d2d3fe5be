// Package scoring assigns a heuristic quality score to name candidates.
//
// The score is not a linguistic judgement. It rewards candidates that carry
// the fields a user needs to understand the name:
//
//	base                                  60
//	romanization present                 +10
//	meaning longer than 20 characters    +20
//	meaning mentions a cultural marker   +10
//
// The result is clamped to [0, 100].
package scoring

import (
	"strings"
	"unicode/utf8"

	"github.com/pario-ai/namegen/pkg/models"
)

const (
	Base               = 60
	RomanizationBonus  = 10
	MeaningBonus       = 20
	CulturalBonus      = 10
	MeaningLengthLimit = 20
)

// Markers are matched case-insensitively against the meaning text.
var Markers = []string{
	"poetry", "poem", "classical", "dynasty", "confuci", "tradition", "ancient", "literature",
	"诗", "经", "典", "古",
}

// Score returns the quality score for n. It only reads n.
func Score(n models.Name) int {
	score := Base
	if strings.TrimSpace(n.Romanization) != "" {
		score += RomanizationBonus
	}
	if utf8.RuneCountInString(n.Meaning) > MeaningLengthLimit {
		score += MeaningBonus
	}
	if hasMarker(n.Meaning) {
		score += CulturalBonus
	}
	return clamp(score)
}

func hasMarker(s string) bool {
	s = strings.ToLower(s)
	for _, m := range Markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
