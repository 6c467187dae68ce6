// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/danielhkuo/tallykit/ballot"
	"github.com/danielhkuo/tallykit/profile"
)

// ErrBadScoreVector covers malformed positional score vectors: negative
// entries, increasing entries, or more entries than candidates.
var ErrBadScoreVector = errors.New("invalid score vector")

// ScoreVector assigns points to ranking positions, first position first.
// Valid vectors are nonnegative and weakly decreasing, with at most one
// entry per candidate; positions beyond the vector score zero.
type ScoreVector []*big.Rat

// Vector builds a ScoreVector from integer points.
func Vector(points ...int64) ScoreVector {
	v := make(ScoreVector, len(points))
	for i, p := range points {
		v[i] = big.NewRat(p, 1)
	}
	return v
}

// DefaultVector returns the classic Borda vector (n-1, n-2, …, 0) for n
// candidates.
func DefaultVector(n int) ScoreVector {
	v := make(ScoreVector, n)
	for i := range v {
		v[i] = big.NewRat(int64(n-1-i), 1)
	}
	return v
}

// Validate checks the vector against a roster of n candidates.
func (v ScoreVector) Validate(n int) error {
	if len(v) == 0 {
		return fmt.Errorf("%w: vector must have at least one entry", ErrBadScoreVector)
	}
	if len(v) > n {
		return fmt.Errorf("%w: %d entries for %d candidates", ErrBadScoreVector, len(v), n)
	}
	for i, p := range v {
		if p == nil || p.Sign() < 0 {
			return fmt.Errorf("%w: entries must be nonnegative", ErrBadScoreVector)
		}
		if i > 0 && p.Cmp(v[i-1]) > 0 {
			return fmt.Errorf("%w: entries must be weakly decreasing", ErrBadScoreVector)
		}
	}
	return nil
}

// at returns the points for rank slot i (0-based), zero past the end.
func (v ScoreVector) at(i int) *big.Rat {
	if i < len(v) {
		return v[i]
	}
	return new(big.Rat)
}

// Borda computes positional scores for every roster candidate. A nil or
// empty vector means DefaultVector(n). Slots are consumed one per candidate, so a tied
// position of size k spans k slots and each tied candidate receives the
// average of the points in that span. Candidates a ballot does not rank
// split the leftover slots' points evenly.
func Borda(p *profile.Profile, vec ScoreVector) (map[string]*big.Rat, error) {
	n := p.NumCandidates()
	if len(vec) == 0 {
		vec = DefaultVector(n)
	}
	if err := vec.Validate(n); err != nil {
		return nil, err
	}

	scores := make(map[string]*big.Rat, n)
	for _, c := range p.Candidates() {
		scores[c] = new(big.Rat)
	}

	for i, b := range p.Ballots() {
		if !b.HasRanking() {
			return nil, fmt.Errorf("ballot %d: %w", i+1, ballot.ErrNoRanking)
		}
		slot := 0
		ranked := make(map[string]bool)
		for _, pos := range b.Ranking() {
			span := new(big.Rat)
			for k := 0; k < len(pos); k++ {
				span.Add(span, vec.at(slot+k))
			}
			share := new(big.Rat).Quo(span, big.NewRat(int64(len(pos)), 1))
			share.Mul(share, b.Weight())
			for _, c := range pos {
				if scores[c] == nil {
					return nil, fmt.Errorf("ballot %d: %w: %q", i+1, profile.ErrUnknownCand, c)
				}
				scores[c].Add(scores[c], share)
				ranked[c] = true
			}
			slot += len(pos)
		}

		if slot < n {
			leftover := new(big.Rat)
			for k := slot; k < n; k++ {
				leftover.Add(leftover, vec.at(k))
			}
			share := new(big.Rat).Quo(leftover, big.NewRat(int64(n-slot), 1))
			share.Mul(share, b.Weight())
			for _, c := range p.Candidates() {
				if !ranked[c] {
					scores[c].Add(scores[c], share)
				}
			}
		}
	}
	return scores, nil
}
