package prompt

import (
	"strings"
	"testing"

	"github.com/pario-ai/namegen/pkg/models"
)

func baseRequest() models.NamingRequest {
	return models.NamingRequest{Seed: "John", Gender: models.GenderMale, Style: models.StyleModern}
}

func TestBuildDeterministic(t *testing.T) {
	var b Builder
	s1, u1 := b.Build(baseRequest())
	s2, u2 := b.Build(baseRequest())
	if s1 != s2 || u1 != u2 {
		t.Error("expected identical prompts for identical input")
	}
}

func TestBuildContents(t *testing.T) {
	system, user := Builder{}.Build(baseRequest())

	if !strings.Contains(system, "JSON") {
		t.Error("system prompt should demand JSON")
	}
	for _, want := range []string{
		`"John"`,
		StyleDescription(models.StyleModern),
		"a man",
		`"names"`,
		`"romanization"`,
		`"cultural_context"`,
		`"suitability"`,
		"exactly 3 entries",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
	if strings.Contains(user, "Avoid") || strings.Contains(user, "Prefer these") {
		t.Error("preference rules rendered without preferences")
	}
}

func TestBuildStyles(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range []models.Style{
		models.StyleTraditional, models.StyleModern, models.StyleElegant,
		models.StyleNature, models.StyleLiterary,
	} {
		req := baseRequest()
		req.Style = s
		_, user := Builder{}.Build(req)
		if !strings.Contains(user, StyleDescription(s)) {
			t.Errorf("style %s: description missing", s)
		}
		seen[user] = true
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 distinct prompts, got %d", len(seen))
	}
}

func TestBuildPreferences(t *testing.T) {
	req := baseRequest()
	req.Preferences = &models.Preferences{
		AvoidWords:        []string{"死", "病"},
		PreferredElements: []string{"water"},
		MeaningFocus:      "wisdom",
	}
	_, user := Builder{}.Build(req)

	for _, want := range []string{
		"4. Avoid these words or characters: 死, 病.",
		"5. Prefer these elements: water.",
		"6. Focus the meaning on: wisdom.",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("expected %q in prompt:\n%s", want, user)
		}
	}
}

func TestBuildPartialPreferences(t *testing.T) {
	req := baseRequest()
	req.Preferences = &models.Preferences{MeaningFocus: "courage"}
	_, user := Builder{}.Build(req)

	if !strings.Contains(user, "4. Focus the meaning on: courage.") {
		t.Errorf("expected meaning focus as rule 4:\n%s", user)
	}
	if strings.Contains(user, "5.") {
		t.Error("unexpected fifth rule")
	}
}
