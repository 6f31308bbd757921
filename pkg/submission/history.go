package submission

import (
	"context"
	"fmt"
	"sort"

	"github.com/vstopensource/formfill/pkg/model"
	"github.com/vstopensource/formfill/pkg/store"
)

// HistoryField is one displayed answer, label-joined against the current
// schema. Answers whose field was since removed keep the raw id as label.
type HistoryField struct {
	FieldID string
	Label   string
	Value   string
}

// HistoryEntry is one past submission prepared for display.
type HistoryEntry struct {
	Record model.SubmissionRecord
	Fields []HistoryField
}

// History loads the member's past submissions for one form, newest first. An
// empty slice means the member has never submitted; callers render the empty
// state without touching the store further.
func (p *Pipeline) History(ctx context.Context, s model.FormSchema, userID string) ([]HistoryEntry, error) {
	entries, err := p.store.Query(ctx, store.CollectionSubmissions, store.Query{
		Filters: map[string]any{"formId": s.ID, "userId": userID},
		OrderBy: "submittedAt",
		Desc:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("submission: load history: %w", err)
	}

	out := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		var record model.SubmissionRecord
		if err := store.Decode(entry.Data, &record); err != nil {
			return nil, fmt.Errorf("submission: decode history entry %s: %w", entry.ID, err)
		}
		if record.ID == "" {
			record.ID = entry.ID
		}
		out = append(out, HistoryEntry{
			Record: record,
			Fields: joinLabels(s, record.Data),
		})
	}
	return out, nil
}

// joinLabels orders answers by the schema's display order, appending answers
// for unknown field ids at the end.
func joinLabels(s model.FormSchema, data map[string]any) []HistoryField {
	out := make([]HistoryField, 0, len(data))
	seen := make(map[string]bool, len(data))

	for _, field := range model.SortedFields(s.Fields) {
		value, ok := data[field.ID]
		if !ok {
			continue
		}
		seen[field.ID] = true
		label := field.Label
		if label == "" {
			label = field.ID
		}
		out = append(out, HistoryField{
			FieldID: field.ID,
			Label:   label,
			Value:   model.StringValue(value),
		})
	}

	for _, field := range orphanedKeys(data, seen) {
		out = append(out, HistoryField{
			FieldID: field,
			Label:   field,
			Value:   model.StringValue(data[field]),
		})
	}
	return out
}

func orphanedKeys(data map[string]any, seen map[string]bool) []string {
	var keys []string
	for key := range data {
		if !seen[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
