package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemory_GetSetIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	doc := Document{"name": "Signup", "tags": []any{"a"}}
	if err := m.Set(ctx, CollectionForms, "f1", doc); err != nil {
		t.Fatalf("set: %v", err)
	}
	doc["name"] = "mutated"

	got, err := m.Get(ctx, CollectionForms, "f1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["name"] != "Signup" {
		t.Fatalf("stored doc aliased caller memory: %v", got["name"])
	}

	if _, err := m.Get(ctx, CollectionForms, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing doc error = %v, want ErrNotFound", err)
	}
}

func TestMemory_MergeKeepsOtherKeys(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Set(ctx, CollectionTracking, "u1", Document{"submissions": Document{"f1": 1}, "extra": "keep"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.Merge(ctx, CollectionTracking, "u1", Document{"submissions": Document{"f1": 2}}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	got, err := m.Get(ctx, CollectionTracking, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["extra"] != "keep" {
		t.Fatal("merge dropped untouched key")
	}
	if got["submissions"].(Document)["f1"] != 2 {
		t.Fatal("merge did not replace provided key")
	}

	// Merge on a missing document creates it.
	if err := m.Merge(ctx, CollectionTracking, "u2", Document{"submissions": Document{}}); err != nil {
		t.Fatalf("merge upsert: %v", err)
	}
	if _, err := m.Get(ctx, CollectionTracking, "u2"); err != nil {
		t.Fatalf("merged doc missing: %v", err)
	}
}

func TestMemory_QueryFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"s1", "s2", "s3"} {
		userID := "u1"
		if id == "s2" {
			userID = "u2"
		}
		doc := Document{
			"userId":      userID,
			"submittedAt": base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
		}
		if err := m.Set(ctx, CollectionSubmissions, id, doc); err != nil {
			t.Fatalf("set %s: %v", id, err)
		}
	}

	got, err := m.Query(ctx, CollectionSubmissions, Query{
		Filters: map[string]any{"userId": "u1"},
		OrderBy: "submittedAt",
		Desc:    true,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("result count = %d, want 2", len(got))
	}
	if got[0].ID != "s3" || got[1].ID != "s1" {
		t.Fatalf("order = [%s %s], want [s3 s1]", got[0].ID, got[1].ID)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	type record struct {
		Name  string   `json:"name"`
		Count int      `json:"count"`
		IDs   []string `json:"ids"`
	}
	doc, err := Encode(record{Name: "x", Count: 2, IDs: []string{"a"}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if doc["name"] != "x" {
		t.Fatalf("encoded name = %v", doc["name"])
	}

	var out record
	if err := Decode(doc, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 2 || len(out.IDs) != 1 {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}
