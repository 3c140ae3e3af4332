package vectorindex

import (
	"context"
	"errors"
	"sort"
	"sync"

	"banking-assistant-be/pkg/store"
)

// MemoryIndex is a brute-force cosine index for tests and offline
// experiments; production search goes through the pgvector index.
type MemoryIndex struct {
	mu       sync.RWMutex
	vectors  [][]float32
	passages []store.Passage
}

var _ Index = (*MemoryIndex)(nil)

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Add registers a passage with its embedding
func (m *MemoryIndex) Add(passage store.Passage, vector []float32) error {
	if len(vector) == 0 {
		return errors.New("empty vector")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.vectors) > 0 && len(m.vectors[0]) != len(vector) {
		return errors.New("vector dimension mismatch")
	}
	m.passages = append(m.passages, passage)
	m.vectors = append(m.vectors, vector)
	return nil
}

// RemoveDocument drops every passage belonging to a document
func (m *MemoryIndex) RemoveDocument(documentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keptPassages := m.passages[:0]
	keptVectors := m.vectors[:0]
	for i, p := range m.passages {
		if p.DocumentID == documentID {
			continue
		}
		keptPassages = append(keptPassages, p)
		keptVectors = append(keptVectors, m.vectors[i])
	}
	m.passages = keptPassages
	m.vectors = keptVectors
}

func (m *MemoryIndex) Search(ctx context.Context, vector []float32, topK int, minScore float64) ([]store.Passage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if topK <= 0 {
		topK = 5
	}

	// Cosine similarity; vectors are assumed L2-normalized
	type scored struct {
		idx   int
		score float64
	}
	hits := make([]scored, 0, len(m.vectors))
	for i := range m.vectors {
		score := dot(m.vectors[i], vector)
		if score < minScore {
			continue
		}
		hits = append(hits, scored{idx: i, score: score})
	}

	sort.Slice(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	if topK > len(hits) {
		topK = len(hits)
	}

	results := make([]store.Passage, 0, topK)
	for _, h := range hits[:topK] {
		p := m.passages[h.idx]
		p.Score = float32(h.score)
		results = append(results, p)
	}
	return results, nil
}

// Len reports how many passages the index holds
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.passages)
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
