// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseJSONArray decodes the JSON array embedded in a model response into
// v. Models wrap answers in code fences, add prose around them, and emit
// backslashes that are not valid JSON escapes, so the array is cut out of
// the text and retried first with invalid escapes doubled and then with
// them dropped.
func parseJSONArray(text string, v any) error {
	text = stripFence(strings.TrimSpace(text))
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return fmt.Errorf("no JSON array in response")
	}
	text = text[start : end+1]

	err := json.Unmarshal([]byte(text), v)
	if err == nil {
		return nil
	}
	if json.Unmarshal([]byte(repairEscapes(text, true)), v) == nil {
		return nil
	}
	if json.Unmarshal([]byte(repairEscapes(text, false)), v) == nil {
		return nil
	}
	return fmt.Errorf("decoding JSON array: %w", err)
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if i := strings.Index(text, "\n"); i >= 0 {
		text = text[i+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSpace(text)
	return strings.TrimSpace(strings.TrimSuffix(text, "```"))
}

// repairEscapes rewrites backslashes that do not start a valid JSON escape.
// With double set each one becomes an escaped backslash; otherwise it is
// removed.
func repairEscapes(text string, double bool) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(text) && strings.IndexByte(`"\/bfnrtu`, text[i+1]) >= 0 {
			b.WriteByte(c)
			b.WriteByte(text[i+1])
			i++
			continue
		}
		if double {
			b.WriteString(`\\`)
		}
	}
	return b.String()
}
