package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phamvy/chitieu/internal/model"
)

// parseExtractionJSON parses the model's JSON response into an
// ExtractionResult. Vision models wrap JSON in markdown fences and stray
// prose often enough that the payload is located by brace matching rather
// than trusted as-is.
func parseExtractionJSON(text string) (*model.ExtractionResult, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in response")
	}
	text = text[start : end+1]

	var payload struct {
		Blocks [][]string `json:"blocks"`
		Found  bool       `json:"found"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	// Drop blank lines and empty blocks the model sometimes emits.
	blocks := make([][]string, 0, len(payload.Blocks))
	for _, block := range payload.Blocks {
		lines := make([]string, 0, len(block))
		for _, line := range block {
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			blocks = append(blocks, lines)
		}
	}

	result := &model.ExtractionResult{
		Found:  payload.Found && len(blocks) > 0,
		Blocks: blocks,
	}
	return result, nil
}
