package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// WeightMap stores normalized category key → integer weight as JSON.
// It is the single canonical container for preference maps; callers never
// branch on runtime shape.
type WeightMap map[string]int

func (m WeightMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]int(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *WeightMap) Scan(value interface{}) error {
	if m == nil {
		return fmt.Errorf("models.WeightMap: Scan on nil pointer")
	}
	if value == nil {
		*m = WeightMap{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("models.WeightMap: unsupported Scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*m = WeightMap{}
		return nil
	}

	var out map[string]int
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return fmt.Errorf("models.WeightMap: %w", err)
	}
	if out == nil {
		out = map[string]int{}
	}
	*m = out
	return nil
}

// TopKeys returns up to limit keys ordered by descending weight.
func (m WeightMap) TopKeys(limit int) []string {
	if len(m) == 0 || limit <= 0 {
		return nil
	}
	type entry struct {
		key    string
		weight int
	}
	entries := make([]entry, 0, len(m))
	for k, w := range m {
		entries = append(entries, entry{k, w})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].weight != entries[j].weight {
			return entries[i].weight > entries[j].weight
		}
		return entries[i].key < entries[j].key
	})
	if limit > len(entries) {
		limit = len(entries)
	}
	keys := make([]string, 0, limit)
	for _, e := range entries[:limit] {
		keys = append(keys, e.key)
	}
	return keys
}
