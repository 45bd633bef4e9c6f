package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meridianbi/boardpulse/normalize"
)

// classification is the JSON shape the classifier prompt asks for.
type classification struct {
	Boards []string `json:"boards"`
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag. Models wrap JSON replies in fences no matter how firmly the
// prompt says not to.
func stripFences(s string) string {
	text := strings.TrimSpace(s)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		first := strings.TrimSpace(text[:i])
		if first == "json" || first == "JSON" || first == "" {
			text = text[i+1:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// extractJSON pulls the first {...} object out of free-form reply text.
func extractJSON(s string) (string, bool) {
	text := stripFences(s)
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// parseBoards decodes a classifier reply into board kinds. Unknown board
// names are skipped; duplicates collapse.
func parseBoards(reply string) ([]normalize.BoardKind, error) {
	raw, ok := extractJSON(reply)
	if !ok {
		return nil, fmt.Errorf("agent: no JSON object in reply")
	}
	var c classification
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("agent: decode classification: %w", err)
	}

	seen := make(map[normalize.BoardKind]bool, 2)
	var boards []normalize.BoardKind
	for _, name := range c.Boards {
		var kind normalize.BoardKind
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "deals", "deal", "sales":
			kind = normalize.KindDeals
		case "work_orders", "work orders", "workorders", "operations":
			kind = normalize.KindWorkOrders
		default:
			continue
		}
		if !seen[kind] {
			seen[kind] = true
			boards = append(boards, kind)
		}
	}
	return boards, nil
}
