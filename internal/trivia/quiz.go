package trivia

import (
	"context"
	"math/rand/v2"
)

// Rand is the random source used to pick quiz questions.
type Rand interface {
	IntN(n int) int
}

// globalRand uses the runtime-seeded math/rand/v2 generator, which is safe
// for concurrent use.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Selector picks the next quiz question. It keeps no state between calls;
// callers resubmit the ids they have already seen every round.
type Selector struct {
	store Store
	rand  Rand
}

// NewSelector builds a Selector. A nil r uses the shared runtime generator.
func NewSelector(store Store, r Rand) *Selector {
	if r == nil {
		r = globalRand{}
	}
	return &Selector{store: store, rand: r}
}

// Next resolves the candidate pool for req.Scope, drops every id in
// req.PreviousIDs and picks uniformly from what remains.
func (s *Selector) Next(ctx context.Context, req QuizRequest) (QuizResult, error) {
	if req.Scope == nil {
		return QuizResult{}, Invalid("quiz_category", "is required")
	}

	var (
		candidates []Question
		err        error
	)
	if req.Scope.All() {
		candidates, err = s.store.ListAll(ctx)
	} else {
		candidates, err = s.store.ListByCategory(ctx, req.Scope.ID)
	}
	if err != nil {
		return QuizResult{}, err
	}

	seen := make(map[int64]struct{}, len(req.PreviousIDs))
	for _, id := range req.PreviousIDs {
		seen[id] = struct{}{}
	}
	pool := candidates[:0:0]
	for _, q := range candidates {
		if _, ok := seen[q.ID]; !ok {
			pool = append(pool, q)
		}
	}

	if len(pool) == 0 {
		return QuizResult{Done: true}, nil
	}
	picked := pool[s.rand.IntN(len(pool))]
	return QuizResult{Question: &picked}, nil
}
