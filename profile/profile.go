// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package profile

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/danielhkuo/tallykit/ballot"
)

var (
	ErrDuplicateCand = errors.New("duplicate candidate in roster")
	ErrUnknownCand   = errors.New("ballot references candidate outside roster")
)

// Profile is the immutable aggregate of a candidate roster and an ordered
// sequence of ballots for one election instance.
type Profile struct {
	candidates []string // sorted
	ballots    []ballot.Ballot
}

// Option configures a Profile under construction.
type Option func(*builder)

type builder struct {
	candidates []string
	hasRoster  bool
}

// WithCandidates supplies the roster explicitly. Every candidate mentioned
// by a positive-weight ballot must then be a roster member.
func WithCandidates(cands ...string) Option {
	return func(b *builder) {
		b.candidates = cands
		b.hasRoster = true
	}
}

// New constructs a validated Profile. When no roster is supplied the
// candidate set is derived as the union of all mentioned candidates.
func New(ballots []ballot.Ballot, opts ...Option) (*Profile, error) {
	var bld builder
	for _, opt := range opts {
		opt(&bld)
	}

	p := &Profile{ballots: make([]ballot.Ballot, len(ballots))}
	copy(p.ballots, ballots)

	if bld.hasRoster {
		seen := make(map[string]bool, len(bld.candidates))
		for _, c := range bld.candidates {
			if seen[c] {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateCand, c)
			}
			seen[c] = true
		}
		p.candidates = append([]string(nil), bld.candidates...)
		sort.Strings(p.candidates)

		for i, b := range p.ballots {
			if b.Weight().Sign() == 0 {
				continue
			}
			for _, c := range b.Mentioned() {
				if !seen[c] {
					return nil, fmt.Errorf("%w: ballot %d mentions %q", ErrUnknownCand, i+1, c)
				}
			}
		}
		return p, nil
	}

	union := make(map[string]bool)
	for _, b := range p.ballots {
		for _, c := range b.Mentioned() {
			union[c] = true
		}
	}
	p.candidates = make([]string, 0, len(union))
	for c := range union {
		p.candidates = append(p.candidates, c)
	}
	sort.Strings(p.candidates)
	return p, nil
}

// Candidates returns the sorted roster.
func (p *Profile) Candidates() []string {
	return append([]string(nil), p.candidates...)
}

// NumCandidates returns the roster size.
func (p *Profile) NumCandidates() int { return len(p.candidates) }

// HasCandidate reports roster membership.
func (p *Profile) HasCandidate(cand string) bool {
	i := sort.SearchStrings(p.candidates, cand)
	return i < len(p.candidates) && p.candidates[i] == cand
}

// Ballots returns a copy of the ordered ballot sequence. Ballots themselves
// are immutable values, so a shallow copy suffices.
func (p *Profile) Ballots() []ballot.Ballot {
	return append([]ballot.Ballot(nil), p.ballots...)
}

// NumBallots returns the number of ballot records (not total weight).
func (p *Profile) NumBallots() int { return len(p.ballots) }

// CandidatesCast returns the roster subset that appears on at least one
// positive-weight ballot.
func (p *Profile) CandidatesCast() []string {
	cast := make(map[string]bool)
	for _, b := range p.ballots {
		if b.Weight().Sign() == 0 {
			continue
		}
		for _, c := range b.Mentioned() {
			cast[c] = true
		}
	}
	out := make([]string, 0, len(cast))
	for _, c := range p.candidates {
		if cast[c] {
			out = append(out, c)
		}
	}
	return out
}

// TotalWeight returns the exact sum of all ballot weights.
func (p *Profile) TotalWeight() *big.Rat {
	total := new(big.Rat)
	for _, b := range p.ballots {
		total.Add(total, b.Weight())
	}
	return total
}

// Condense merges ballots with identical (ranking, scores) by summing their
// weights. Total weight is preserved exactly. Merged ballots keep the order
// in which their key first appeared. Returns a new Profile.
func (p *Profile) Condense() (*Profile, error) {
	type group struct {
		first  ballot.Ballot
		weight *big.Rat
	}
	var order []string
	groups := make(map[string]*group)

	for _, b := range p.ballots {
		key := b.Key()
		g, ok := groups[key]
		if !ok {
			groups[key] = &group{first: b, weight: b.Weight()}
			order = append(order, key)
			continue
		}
		g.weight.Add(g.weight, b.Weight())
	}

	condensed := make([]ballot.Ballot, 0, len(order))
	for _, key := range order {
		g := groups[key]
		merged, err := g.first.WithNewWeight(g.weight)
		if err != nil {
			return nil, err
		}
		condensed = append(condensed, merged)
	}
	return New(condensed, WithCandidates(p.candidates...))
}

// Equal reports whether two profiles have the same roster and the same
// ordered ballots.
func (p *Profile) Equal(other *Profile) bool {
	if other == nil || len(p.candidates) != len(other.candidates) || len(p.ballots) != len(other.ballots) {
		return false
	}
	for i, c := range p.candidates {
		if other.candidates[i] != c {
			return false
		}
	}
	for i, b := range p.ballots {
		if !b.Equal(other.ballots[i]) {
			return false
		}
	}
	return true
}

// String renders a compact summary.
func (p *Profile) String() string {
	return fmt.Sprintf("profile of %d candidates, %d ballots, total weight %s",
		len(p.candidates), len(p.ballots), p.TotalWeight().RatString())
}
