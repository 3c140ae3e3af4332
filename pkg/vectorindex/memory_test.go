package vectorindex

import (
	"context"
	"testing"

	"banking-assistant-be/pkg/store"
)

func TestMemoryIndexSearchOrdersByScore(t *testing.T) {
	idx := NewMemoryIndex()

	passages := []struct {
		id  string
		vec []float32
	}{
		{"far", []float32{0, 1, 0}},
		{"near", []float32{1, 0, 0}},
		{"middle", []float32{0.7071, 0.7071, 0}},
	}
	for _, p := range passages {
		if err := idx.Add(store.Passage{ChunkID: p.id, DocumentID: "doc-1"}, p.vec); err != nil {
			t.Fatal(err)
		}
	}

	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].ChunkID != "near" || results[1].ChunkID != "middle" || results[2].ChunkID != "far" {
		t.Errorf("wrong order: %s %s %s", results[0].ChunkID, results[1].ChunkID, results[2].ChunkID)
	}
	if results[0].Score <= results[1].Score || results[1].Score <= results[2].Score {
		t.Errorf("scores not descending: %v %v %v", results[0].Score, results[1].Score, results[2].Score)
	}
}

func TestMemoryIndexMinScoreFilters(t *testing.T) {
	idx := NewMemoryIndex()
	if err := idx.Add(store.Passage{ChunkID: "on-topic"}, []float32{1, 0}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(store.Passage{ChunkID: "off-topic"}, []float32{0, 1}); err != nil {
		t.Fatal(err)
	}

	results, err := idx.Search(context.Background(), []float32{1, 0}, 10, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ChunkID != "on-topic" {
		t.Errorf("min score filter failed: %+v", results)
	}
}

func TestMemoryIndexTopKLimits(t *testing.T) {
	idx := NewMemoryIndex()
	for i := 0; i < 10; i++ {
		if err := idx.Add(store.Passage{ChunkID: "c"}, []float32{1, 0}); err != nil {
			t.Fatal(err)
		}
	}

	results, err := idx.Search(context.Background(), []float32{1, 0}, 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Errorf("got %d results, want 4", len(results))
	}
}

func TestMemoryIndexRemoveDocument(t *testing.T) {
	idx := NewMemoryIndex()
	if err := idx.Add(store.Passage{ChunkID: "a", DocumentID: "doc-1"}, []float32{1, 0}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(store.Passage{ChunkID: "b", DocumentID: "doc-2"}, []float32{0, 1}); err != nil {
		t.Fatal(err)
	}

	idx.RemoveDocument("doc-1")

	if idx.Len() != 1 {
		t.Fatalf("index holds %d passages, want 1", idx.Len())
	}
	results, err := idx.Search(context.Background(), []float32{1, 0}, 10, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].DocumentID != "doc-2" {
		t.Errorf("removed document still searchable: %+v", results)
	}
}

func TestMemoryIndexDimensionMismatch(t *testing.T) {
	idx := NewMemoryIndex()
	if err := idx.Add(store.Passage{ChunkID: "a"}, []float32{1, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(store.Passage{ChunkID: "b"}, []float32{1, 0}); err == nil {
		t.Error("expected dimension mismatch error")
	}
}
