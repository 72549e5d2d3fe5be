// Package parse decodes upstream model output into name candidates.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pario-ai/namegen/pkg/models"
)

// ErrParse is returned when upstream output cannot be used.
var ErrParse = errors.New("unparseable model output")

// Entry is one candidate as the model is asked to emit it.
type Entry struct {
	Name            string `json:"name" jsonschema:"description=Chinese characters of the full name"`
	Romanization    string `json:"romanization" jsonschema:"description=Hanyu pinyin with tone marks"`
	Meaning         string `json:"meaning" jsonschema:"description=Meaning of the name"`
	CulturalContext string `json:"cultural_context" jsonschema:"description=Cultural background of the characters"`
	Suitability     int    `json:"suitability" jsonschema:"minimum=1,maximum=100"`
}

// Payload is the reply shape requested from the model.
type Payload struct {
	Names []Entry `json:"names"`
}

// entry is decoded leniently: suitability is ignored and every text field is optional.
type entry struct {
	Name            string `json:"name" validate:"required"`
	Romanization    string `json:"romanization"`
	Meaning         string `json:"meaning"`
	CulturalContext string `json:"cultural_context"`
}

// Parse decodes raw model text. Malformed entries are skipped; the call only
// fails when the envelope itself is unusable or no entry survives.
func Parse(raw string) ([]models.Name, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(StripFence(raw)), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	field, ok := envelope["names"]
	if !ok {
		return nil, fmt.Errorf("%w: missing names field", ErrParse)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(field, &items); err != nil || items == nil {
		return nil, fmt.Errorf("%w: names is not a list", ErrParse)
	}

	names := make([]models.Name, 0, len(items))
	for _, item := range items {
		var e entry
		if err := json.Unmarshal(item, &e); err != nil {
			continue
		}
		e.Name = strings.TrimSpace(e.Name)
		if models.Validator().Struct(e) != nil {
			continue
		}
		names = append(names, models.Name{
			Name:               e.Name,
			Romanization:       e.Romanization,
			Meaning:            e.Meaning,
			CulturalBackground: e.CulturalContext,
		})
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no usable entries", ErrParse)
	}
	return names, nil
}

// StripFence removes a surrounding Markdown code fence, if any.
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
