// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"math/big"
)

// stepDominating elects one dominating tier per round. The tier is the
// smallest set of remaining candidates, built outward from the pairwise-win
// leaders, that nobody outside the set beats by strict majority. A tier that
// fits the open seats is elected whole; an oversized tier goes through the
// tie-break policy for the needed number of seats.
func (e *Engine) stepDominating() (stepResult, error) {
	prefs, err := pairwisePrefs(e.profile, e.remaining)
	if err != nil {
		return stepResult{}, err
	}
	adj := beats(prefs, e.remaining)

	// Copeland-style win counts double as this round's scores.
	scores := make(map[string]*big.Rat, len(e.remaining))
	for _, c := range e.remaining {
		scores[c] = big.NewRat(int64(len(adj[c])), 1)
	}

	tier := topTier(e.remaining, adj)
	open := e.openSeats()
	if len(tier) <= open {
		return stepResult{scores: scores, newlyElected: byTallyDesc(tier, scores)}, nil
	}

	elected, settled, err := e.electTop(restrictScores(scores, tier), open)
	if err != nil {
		return stepResult{}, err
	}
	return stepResult{scores: scores, newlyElected: elected, tiebreakSettled: settled, terminal: true}, nil
}

// topTier starts from the candidates with the most pairwise wins and closes
// the set under "is beaten by": any outsider who beats a member joins, until
// no outsider beats anyone inside.
func topTier(cands []string, adj map[string]map[string]bool) []string {
	best := -1
	for _, c := range cands {
		if len(adj[c]) > best {
			best = len(adj[c])
		}
	}
	in := make(map[string]bool, len(cands))
	for _, c := range cands {
		if len(adj[c]) == best {
			in[c] = true
		}
	}

	for {
		grew := false
		for _, out := range cands {
			if in[out] {
				continue
			}
			for member := range in {
				if adj[out][member] {
					in[out] = true
					grew = true
					break
				}
			}
		}
		if !grew {
			break
		}
	}

	var tier []string
	for _, c := range cands {
		if in[c] {
			tier = append(tier, c)
		}
	}
	return tier
}

// restrictScores keeps only the given candidates' entries.
func restrictScores(scores map[string]*big.Rat, cands []string) map[string]*big.Rat {
	out := make(map[string]*big.Rat, len(cands))
	for _, c := range cands {
		out[c] = scores[c]
	}
	return out
}
