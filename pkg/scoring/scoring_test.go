package scoring

import (
	"strings"
	"testing"

	"github.com/pario-ai/namegen/pkg/models"
)

func TestScoreConstants(t *testing.T) {
	long := strings.Repeat("x", MeaningLengthLimit+1)
	exact := strings.Repeat("x", MeaningLengthLimit)

	tests := []struct {
		name string
		in   models.Name
		want int
	}{
		{"bare", models.Name{Name: "王明"}, 60},
		{"romanization", models.Name{Name: "王明", Romanization: "Wáng Míng"}, 70},
		{"whitespace romanization", models.Name{Name: "王明", Romanization: "  "}, 60},
		{"meaning at threshold", models.Name{Name: "王明", Meaning: exact}, 60},
		{"meaning above threshold", models.Name{Name: "王明", Meaning: long}, 80},
		{"short marker", models.Name{Name: "王明", Meaning: "from a poem"}, 70},
		{"marker case-insensitive", models.Name{Name: "王明", Meaning: "TANG DYNASTY"}, 70},
		{"chinese marker", models.Name{Name: "王明", Meaning: "出自诗经"}, 70},
		{"all bonuses", models.Name{Name: "王明", Romanization: "Wáng Míng", Meaning: "bright light, from classical poetry"}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.in); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreCountsRunes(t *testing.T) {
	// 21 characters, 63 bytes.
	n := models.Name{Meaning: strings.Repeat("明", 21)}
	if got := Score(n); got != Base+MeaningBonus {
		t.Errorf("expected %d, got %d", Base+MeaningBonus, got)
	}
	n.Meaning = strings.Repeat("明", 20)
	if got := Score(n); got != Base {
		t.Errorf("expected %d for 20 runes, got %d", Base, got)
	}
}

func TestScoreIdempotent(t *testing.T) {
	n := models.Name{Name: "李华", Romanization: "Lǐ Huá", Meaning: "splendid, an ancient word of praise"}
	first := Score(n)
	if second := Score(n); first != second {
		t.Errorf("expected stable score, got %d then %d", first, second)
	}
}

func TestScoreMonotone(t *testing.T) {
	meanings := []string{"", "short", "a meaning that is definitely long enough", "classical", "古"}
	for _, m := range meanings {
		without := models.Name{Name: "王明", Meaning: m}
		with := without
		with.Romanization = "Wáng Míng"
		if Score(with) < Score(without) {
			t.Errorf("meaning %q: romanization lowered score", m)
		}

		longer := without
		longer.Meaning = m + " and it draws on the poetry of the Tang"
		if Score(longer) < Score(without) {
			t.Errorf("meaning %q: extending meaning lowered score", m)
		}
	}
}

func TestScoreRange(t *testing.T) {
	for _, n := range []models.Name{
		{},
		{Name: "x", Romanization: "y", Meaning: strings.Repeat("poetry ", 50)},
	} {
		if s := Score(n); s < 0 || s > 100 {
			t.Errorf("score %d out of range", s)
		}
	}
}
