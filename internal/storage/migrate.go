package storage

import (
	"encoding/json"
	"fmt"
	"strings"
)

type legacyNote struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Time string `json:"time"`
}

type migratedIdea struct {
	ID          int64   `json:"id"`
	Text        string  `json:"text"`
	RelatedTodo *string `json:"relatedTodo"`
	Time        string  `json:"time"`
}

// MigrateLegacyNotes 将旧版单列表备忘导入为未分组的灵感
// MigrateLegacyNotes imports notes from the single-list variant as ungrouped
// ideas. It runs only when no ideas have been stored yet, and leaves the
// legacy key in place.
func MigrateLegacyNotes(kv KV) (int, error) {
	if _, ok, err := kv.Get(KeyIdeas); err != nil {
		return 0, fmt.Errorf("check ideas: %w", err)
	} else if ok {
		return 0, nil
	}

	raw, ok, err := kv.Get(KeyLegacyNotes)
	if err != nil {
		return 0, fmt.Errorf("read legacy notes: %w", err)
	}
	if !ok {
		return 0, nil
	}

	var notes []legacyNote
	if err := json.Unmarshal(raw, &notes); err != nil {
		return 0, fmt.Errorf("parse legacy notes: %w", err)
	}

	ideas := make([]migratedIdea, 0, len(notes))
	for _, n := range notes {
		text := strings.TrimSpace(n.Text)
		if text == "" {
			continue
		}
		ideas = append(ideas, migratedIdea{ID: n.ID, Text: n.Text, Time: n.Time})
	}
	if len(ideas) == 0 {
		return 0, nil
	}

	data, err := json.Marshal(ideas)
	if err != nil {
		return 0, fmt.Errorf("marshal migrated ideas: %w", err)
	}
	if err := kv.Set(KeyIdeas, data); err != nil {
		return 0, fmt.Errorf("write migrated ideas: %w", err)
	}
	return len(ideas), nil
}
