package llm

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// extractText returns the first non-empty string found at one of paths
// (dot-separated, numeric segments index arrays). When none match, or the
// body is not JSON, the compacted raw body is returned.
func extractText(raw []byte, paths ...string) string {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return strings.TrimSpace(string(raw))
	}

	for _, p := range paths {
		if s, ok := lookup(doc, strings.Split(p, ".")).(string); ok && s != "" {
			return s
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func lookup(v any, path []string) any {
	for _, seg := range path {
		switch node := v.(type) {
		case map[string]any:
			v = node[seg]
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			v = node[i]
		default:
			return nil
		}
	}
	return v
}
