package startmark

import (
	"context"
	"sync"
)

// Marks records that this player instance went through the start path for a
// quiz. Marks are advisory; the attempt gate still runs on every session.
type Marks interface {
	Set(ctx context.Context, quizID string) error
	Has(ctx context.Context, quizID string) (bool, error)
	Clear(ctx context.Context, quizID string) error
}

// MemoryMarks lives as long as the process.
type MemoryMarks struct {
	marks sync.Map
}

func NewMemoryMarks() *MemoryMarks {
	return &MemoryMarks{}
}

func (m *MemoryMarks) Set(_ context.Context, quizID string) error {
	m.marks.Store(quizID, struct{}{})
	return nil
}

func (m *MemoryMarks) Has(_ context.Context, quizID string) (bool, error) {
	_, ok := m.marks.Load(quizID)
	return ok, nil
}

func (m *MemoryMarks) Clear(_ context.Context, quizID string) error {
	m.marks.Delete(quizID)
	return nil
}
