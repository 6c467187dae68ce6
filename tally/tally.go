// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/danielhkuo/tallykit/ballot"
	"github.com/danielhkuo/tallykit/profile"
)

var (
	ErrNoScores = errors.New("ballot has no scores")
)

// FirstPlace computes first-preference tallies restricted to the remaining
// candidates. Each ballot's weight goes to whichever remaining candidates
// occupy its highest-ranked position that still holds at least one of them;
// positions containing only decided candidates are skipped. A genuine tie
// among j remaining candidates at that position splits the weight 1/j per
// candidate. Ballots with no remaining preference contribute nothing.
//
// A nil remaining slice means the full roster. Every remaining candidate is
// present in the result, with zero tally if unsupported.
func FirstPlace(p *profile.Profile, remaining []string) (map[string]*big.Rat, error) {
	if remaining == nil {
		remaining = p.Candidates()
	}
	live := make(map[string]bool, len(remaining))
	tallies := make(map[string]*big.Rat, len(remaining))
	for _, c := range remaining {
		live[c] = true
		tallies[c] = new(big.Rat)
	}

	for i, b := range p.Ballots() {
		if !b.HasRanking() {
			return nil, fmt.Errorf("ballot %d: %w", i+1, ballot.ErrNoRanking)
		}
		for _, pos := range b.Ranking() {
			var hit []string
			for _, c := range pos {
				if live[c] {
					hit = append(hit, c)
				}
			}
			if len(hit) == 0 {
				continue
			}
			share := new(big.Rat).Quo(b.Weight(), big.NewRat(int64(len(hit)), 1))
			for _, c := range hit {
				tallies[c].Add(tallies[c], share)
			}
			break
		}
	}
	return tallies, nil
}

// LastPlace is FirstPlace's mirror: each ballot's weight goes to the
// remaining candidates at its lowest-ranked position that still holds any of
// them, split 1/j on ties. It measures veto strength rather than support.
func LastPlace(p *profile.Profile, remaining []string) (map[string]*big.Rat, error) {
	if remaining == nil {
		remaining = p.Candidates()
	}
	live := make(map[string]bool, len(remaining))
	tallies := make(map[string]*big.Rat, len(remaining))
	for _, c := range remaining {
		live[c] = true
		tallies[c] = new(big.Rat)
	}

	for i, b := range p.Ballots() {
		if !b.HasRanking() {
			return nil, fmt.Errorf("ballot %d: %w", i+1, ballot.ErrNoRanking)
		}
		ranking := b.Ranking()
		for k := len(ranking) - 1; k >= 0; k-- {
			var hit []string
			for _, c := range ranking[k] {
				if live[c] {
					hit = append(hit, c)
				}
			}
			if len(hit) == 0 {
				continue
			}
			share := new(big.Rat).Quo(b.Weight(), big.NewRat(int64(len(hit)), 1))
			for _, c := range hit {
				tallies[c].Add(tallies[c], share)
			}
			break
		}
	}
	return tallies, nil
}

// Mentions sums, per candidate, the weight of every ballot whose ranking
// mentions them at any position.
func Mentions(p *profile.Profile) (map[string]*big.Rat, error) {
	out := make(map[string]*big.Rat)
	for i, b := range p.Ballots() {
		if !b.HasRanking() {
			return nil, fmt.Errorf("ballot %d: %w", i+1, ballot.ErrNoRanking)
		}
		for _, pos := range b.Ranking() {
			for _, c := range pos {
				if out[c] == nil {
					out[c] = new(big.Rat)
				}
				out[c].Add(out[c], b.Weight())
			}
		}
	}
	return out, nil
}

// FromBallotScores sums the ballots' native score maps, weighted, ignoring
// rankings entirely. Every counted ballot must carry scores. Candidates
// whose total is zero are omitted.
func FromBallotScores(p *profile.Profile) (map[string]*big.Rat, error) {
	out := make(map[string]*big.Rat)
	for i, b := range p.Ballots() {
		if !b.HasScores() {
			return nil, fmt.Errorf("ballot %d: %w", i+1, ErrNoScores)
		}
		for cand, s := range b.Scores() {
			if out[cand] == nil {
				out[cand] = new(big.Rat)
			}
			out[cand].Add(out[cand], new(big.Rat).Mul(s, b.Weight()))
		}
	}
	for cand, total := range out {
		if total.Sign() == 0 {
			delete(out, cand)
		}
	}
	return out, nil
}

// RankingFromScores groups candidates with equal score into tied positions,
// ordered from highest score to lowest. Candidates inside a position are
// sorted by name for deterministic presentation, not as a tie-break.
func RankingFromScores(scores map[string]*big.Rat) []ballot.Position {
	cands := make([]string, 0, len(scores))
	for c := range scores {
		cands = append(cands, c)
	}
	sort.Slice(cands, func(i, j int) bool {
		cmp := scores[cands[i]].Cmp(scores[cands[j]])
		if cmp != 0 {
			return cmp > 0
		}
		return cands[i] < cands[j]
	})

	var out []ballot.Position
	for i := 0; i < len(cands); {
		j := i + 1
		for j < len(cands) && scores[cands[j]].Cmp(scores[cands[i]]) == 0 {
			j++
		}
		out = append(out, ballot.NewPosition(cands[i:j]...))
		i = j
	}
	return out
}
