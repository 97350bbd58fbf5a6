package trivia

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

var testCategories = []Category{
	{ID: 1, Type: "Science"},
	{ID: 2, Type: "Art"},
	{ID: 3, Type: "Geography"},
}

func seededStore(t *testing.T, questions ...NewQuestion) (*MemoryStore, []int64) {
	t.Helper()
	store := NewMemoryStore(testCategories...)
	ids := make([]int64, 0, len(questions))
	for _, q := range questions {
		id, err := store.Insert(context.Background(), q)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return store, ids
}

func sampleQuestion(text string, category int64) NewQuestion {
	return NewQuestion{Question: text, Answer: "answer", Category: category, Difficulty: 2}
}

// fixedRand always returns the same index, clamped to the pool.
type fixedRand struct{ idx int }

func (f fixedRand) IntN(n int) int {
	if f.idx >= n {
		return n - 1
	}
	return f.idx
}
