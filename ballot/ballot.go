// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
)

var (
	ErrNegativeWeight = errors.New("ballot weight must be nonnegative")
	ErrNegativeScore  = errors.New("ballot scores must be nonnegative")
	ErrEmptyPosition  = errors.New("ranking position must not be empty")
	ErrRepeatedCand   = errors.New("candidate appears in more than one ranking position")
	ErrNoRanking      = errors.New("ballot has no ranking")
)

// Position is one rung of a ranking. More than one candidate in a position
// means the voter tied them at that rank. Positions are stored sorted.
type Position []string

// NewPosition builds a sorted, de-duplicated position.
func NewPosition(cands ...string) Position {
	seen := make(map[string]bool, len(cands))
	pos := make(Position, 0, len(cands))
	for _, c := range cands {
		if !seen[c] {
			seen[c] = true
			pos = append(pos, c)
		}
	}
	sort.Strings(pos)
	return pos
}

// Contains reports whether the position includes cand.
func (p Position) Contains(cand string) bool {
	for _, c := range p {
		if c == cand {
			return true
		}
	}
	return false
}

func (p Position) clone() Position {
	out := make(Position, len(p))
	copy(out, p)
	return out
}

// Ballot is a single voter-weight record: an optional ranking, optional
// per-candidate scores, and an exact rational weight. Ballots are immutable;
// every transformation returns a new Ballot.
type Ballot struct {
	ranking []Position
	scores  map[string]*big.Rat
	weight  *big.Rat
}

// Option configures a Ballot under construction.
type Option func(*builder)

type builder struct {
	ranking []Position
	scores  map[string]*big.Rat
	weight  *big.Rat
}

// WithRanking sets the ordered ranking positions.
func WithRanking(positions ...Position) Option {
	return func(b *builder) { b.ranking = positions }
}

// WithScores sets the candidate score map. Zero-valued entries are dropped,
// matching the convention that an unscored candidate scores zero anyway.
func WithScores(scores map[string]*big.Rat) Option {
	return func(b *builder) { b.scores = scores }
}

// WithWeight sets the exact rational weight.
func WithWeight(w *big.Rat) Option {
	return func(b *builder) { b.weight = w }
}

// WithWeightInt sets an integer weight.
func WithWeightInt(w int64) Option {
	return func(b *builder) { b.weight = big.NewRat(w, 1) }
}

// New constructs a validated Ballot. The default weight is 1. Construction
// fails rather than producing a partially valid ballot.
func New(opts ...Option) (Ballot, error) {
	var bld builder
	for _, opt := range opts {
		opt(&bld)
	}

	weight := big.NewRat(1, 1)
	if bld.weight != nil {
		if bld.weight.Sign() < 0 {
			return Ballot{}, fmt.Errorf("%w: %s", ErrNegativeWeight, bld.weight.RatString())
		}
		weight = new(big.Rat).Set(bld.weight)
	}

	seen := make(map[string]bool)
	ranking := make([]Position, 0, len(bld.ranking))
	for i, pos := range bld.ranking {
		if len(pos) == 0 {
			return Ballot{}, fmt.Errorf("%w: position %d", ErrEmptyPosition, i+1)
		}
		clean := NewPosition(pos...)
		for _, c := range clean {
			if seen[c] {
				return Ballot{}, fmt.Errorf("%w: %q", ErrRepeatedCand, c)
			}
			seen[c] = true
		}
		ranking = append(ranking, clean)
	}

	var scores map[string]*big.Rat
	if len(bld.scores) > 0 {
		scores = make(map[string]*big.Rat, len(bld.scores))
		for cand, s := range bld.scores {
			if s == nil || s.Sign() == 0 {
				continue
			}
			if s.Sign() < 0 {
				return Ballot{}, fmt.Errorf("%w: %q scored %s", ErrNegativeScore, cand, s.RatString())
			}
			scores[cand] = new(big.Rat).Set(s)
		}
		if len(scores) == 0 {
			scores = nil
		}
	}

	return Ballot{ranking: ranking, scores: scores, weight: weight}, nil
}

// Must is a test and literal helper: it panics if New fails.
func Must(opts ...Option) Ballot {
	b, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// Ranking returns a copy of the ordered ranking positions.
func (b Ballot) Ranking() []Position {
	out := make([]Position, len(b.ranking))
	for i, pos := range b.ranking {
		out[i] = pos.clone()
	}
	return out
}

// HasRanking reports whether the ballot carries a (nonempty) ranking.
func (b Ballot) HasRanking() bool { return len(b.ranking) > 0 }

// HasTies reports whether any ranking position holds more than one candidate.
func (b Ballot) HasTies() bool {
	for _, pos := range b.ranking {
		if len(pos) > 1 {
			return true
		}
	}
	return false
}

// Scores returns a copy of the candidate score map (nil if unscored).
func (b Ballot) Scores() map[string]*big.Rat {
	if b.scores == nil {
		return nil
	}
	out := make(map[string]*big.Rat, len(b.scores))
	for cand, s := range b.scores {
		out[cand] = new(big.Rat).Set(s)
	}
	return out
}

// HasScores reports whether the ballot carries scores.
func (b Ballot) HasScores() bool { return len(b.scores) > 0 }

// Weight returns a copy of the ballot's exact weight.
func (b Ballot) Weight() *big.Rat {
	if b.weight == nil {
		return big.NewRat(1, 1)
	}
	return new(big.Rat).Set(b.weight)
}

// Mentioned returns every candidate named by the ranking or scores, sorted.
func (b Ballot) Mentioned() []string {
	seen := make(map[string]bool)
	for _, pos := range b.ranking {
		for _, c := range pos {
			seen[c] = true
		}
	}
	for c := range b.scores {
		seen[c] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// WithNewWeight returns a copy of the ballot with the given weight.
func (b Ballot) WithNewWeight(w *big.Rat) (Ballot, error) {
	if w == nil || w.Sign() < 0 {
		return Ballot{}, ErrNegativeWeight
	}
	out := b
	out.weight = new(big.Rat).Set(w)
	return out, nil
}

// RemoveCands returns a copy of the ballot with the named candidates struck
// from both ranking and scores. Positions emptied by the removal vanish.
func (b Ballot) RemoveCands(cands ...string) Ballot {
	gone := make(map[string]bool, len(cands))
	for _, c := range cands {
		gone[c] = true
	}

	var ranking []Position
	for _, pos := range b.ranking {
		kept := make(Position, 0, len(pos))
		for _, c := range pos {
			if !gone[c] {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			ranking = append(ranking, kept)
		}
	}

	var scores map[string]*big.Rat
	if b.scores != nil {
		scores = make(map[string]*big.Rat)
		for cand, s := range b.scores {
			if !gone[cand] {
				scores[cand] = new(big.Rat).Set(s)
			}
		}
		if len(scores) == 0 {
			scores = nil
		}
	}

	return Ballot{ranking: ranking, scores: scores, weight: new(big.Rat).Set(b.weight)}
}

// Key returns a canonical string for the (ranking, scores) pair, identical
// for ballots that differ only in weight. Used by profile condensation.
func (b Ballot) Key() string {
	var sb strings.Builder
	for i, pos := range b.ranking {
		if i > 0 {
			sb.WriteByte('>')
		}
		sb.WriteString(strings.Join(pos, "="))
	}
	sb.WriteByte('|')
	if len(b.scores) > 0 {
		cands := make([]string, 0, len(b.scores))
		for c := range b.scores {
			cands = append(cands, c)
		}
		sort.Strings(cands)
		for i, c := range cands {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(c)
			sb.WriteByte(':')
			sb.WriteString(b.scores[c].RatString())
		}
	}
	return sb.String()
}

// Equal reports structural equality of ranking, scores, and weight.
func (b Ballot) Equal(other Ballot) bool {
	return b.Key() == other.Key() && b.Weight().Cmp(other.Weight()) == 0
}

// String renders the ballot for logs and debugging.
func (b Ballot) String() string {
	var sb strings.Builder
	if len(b.ranking) > 0 {
		sb.WriteString("ranking ")
		for i, pos := range b.ranking {
			if i > 0 {
				sb.WriteString(" > ")
			}
			sb.WriteString(strings.Join(pos, "="))
		}
	}
	if len(b.scores) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString("scores ")
		cands := make([]string, 0, len(b.scores))
		for c := range b.scores {
			cands = append(cands, c)
		}
		sort.Strings(cands)
		for i, c := range cands {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s=%s", c, b.scores[c].RatString())
		}
	}
	if sb.Len() == 0 {
		sb.WriteString("empty")
	}
	fmt.Fprintf(&sb, " (weight %s)", b.Weight().RatString())
	return sb.String()
}
