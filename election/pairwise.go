// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"fmt"
	"math/big"

	"github.com/danielhkuo/tallykit/ballot"
	"github.com/danielhkuo/tallykit/profile"
)

// pairwisePrefs computes, for every ordered pair (a, b) of the given
// candidates, the total ballot weight strictly preferring a to b. A ballot
// prefers a to b when it ranks a at a higher position, or ranks a and not
// b. Ballots ranking neither, or tying them at one position, express no
// preference for the pair.
func pairwisePrefs(p *profile.Profile, cands []string) (map[string]map[string]*big.Rat, error) {
	prefs := make(map[string]map[string]*big.Rat, len(cands))
	for _, a := range cands {
		prefs[a] = make(map[string]*big.Rat, len(cands))
		for _, b := range cands {
			if a != b {
				prefs[a][b] = new(big.Rat)
			}
		}
	}

	for i, b := range p.Ballots() {
		if !b.HasRanking() {
			return nil, fmt.Errorf("ballot %d: %w", i+1, ballot.ErrNoRanking)
		}
		rank := make(map[string]int)
		for idx, pos := range b.Ranking() {
			for _, c := range pos {
				rank[c] = idx + 1 // 1-based; 0 means unranked
			}
		}
		w := b.Weight()
		for _, x := range cands {
			rx := rank[x]
			if rx == 0 {
				continue
			}
			for _, y := range cands {
				if x == y {
					continue
				}
				ry := rank[y]
				if ry == 0 || rx < ry {
					prefs[x][y].Add(prefs[x][y], w)
				}
			}
		}
	}
	return prefs, nil
}

// pairwiseWins counts, per candidate, the opponents they beat by strict
// pairwise majority.
func pairwiseWins(p *profile.Profile, cands []string) (map[string]int, error) {
	prefs, err := pairwisePrefs(p, cands)
	if err != nil {
		return nil, err
	}
	wins := make(map[string]int, len(cands))
	for _, a := range cands {
		for _, b := range cands {
			if a != b && prefs[a][b].Cmp(prefs[b][a]) > 0 {
				wins[a]++
			}
		}
	}
	return wins, nil
}

// beats reports the strict pairwise-majority relation as adjacency sets.
func beats(prefs map[string]map[string]*big.Rat, cands []string) map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(cands))
	for _, a := range cands {
		out[a] = make(map[string]bool)
		for _, b := range cands {
			if a != b && prefs[a][b].Cmp(prefs[b][a]) > 0 {
				out[a][b] = true
			}
		}
	}
	return out
}
