// Package fallback holds the fixed name set served when the upstream fails.
package fallback

import "github.com/pario-ai/namegen/pkg/models"

var catalog = []models.Name{
	{
		Name:               "李明",
		Romanization:       "Lǐ Míng",
		Meaning:            "Bright and intelligent, symbolizing wisdom and clarity",
		Pronunciation:      "Lee Ming",
		CulturalBackground: "Li is one of the most common Chinese surnames; Ming means bright.",
		Score:              85,
	},
	{
		Name:               "王华",
		Romanization:       "Wáng Huá",
		Meaning:            "Magnificent and splendid, representing prosperity and success",
		Pronunciation:      "Wahng Hwah",
		CulturalBackground: "Wang means king; Hua refers to China and to splendour.",
		Score:              82,
	},
	{
		Name:               "张文",
		Romanization:       "Zhāng Wén",
		Meaning:            "Cultured and literary, representing education and refinement",
		Pronunciation:      "Jahng Wen",
		CulturalBackground: "Zhang is a common surname; Wen stands for culture and learning.",
		Score:              80,
	},
}

// Names returns a fresh copy of the fallback set. Callers may modify it.
func Names() []models.Name {
	out := make([]models.Name, len(catalog))
	copy(out, catalog)
	return out
}
