package pairing

import (
	"math/rand"

	"github.com/google/uuid"
)

// MatchOutcome is the result of one matching pass.
type MatchOutcome struct {
	Pairs    [][2]uuid.UUID
	Unpaired []uuid.UUID
}

// shuffled returns a copy of ids permuted by a generator seeded with seed.
// The same seed and input order always produce the same permutation, so a
// run can be reproduced and explained after the fact.
func shuffled(ids []uuid.UUID, seed int64) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Match shuffles the candidate list with the given seed and pairs users
// greedily: each still-unpaired user is matched with the first later user
// the predicate allows. Users with no legal partner remain unpaired; an
// illegal pairing is never forced. With an odd population at least one user
// is always left over.
func Match(ids []uuid.UUID, seed int64, canPair func(a, b uuid.UUID) bool) MatchOutcome {
	order := shuffled(ids, seed)
	used := make([]bool, len(order))
	var out MatchOutcome

	for i := 0; i < len(order); i++ {
		if used[i] {
			continue
		}
		matched := false
		for j := i + 1; j < len(order); j++ {
			if used[j] || !canPair(order[i], order[j]) {
				continue
			}
			out.Pairs = append(out.Pairs, [2]uuid.UUID{order[i], order[j]})
			used[i], used[j] = true, true
			matched = true
			break
		}
		if !matched {
			out.Unpaired = append(out.Unpaired, order[i])
		}
	}
	return out
}
