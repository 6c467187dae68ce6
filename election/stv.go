// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/danielhkuo/tallykit/ballot"
	"github.com/danielhkuo/tallykit/profile"
	"github.com/danielhkuo/tallykit/tiebreak"
)

// stvBallot is the engine's mutable working copy of one ballot: the strict
// preference order, a cursor, and the ballot's current (possibly rescaled)
// weight. The source profile is never touched.
type stvBallot struct {
	prefs  []string
	idx    int
	weight *big.Rat
	dead   bool // retained by an elected candidate, or exhausted
}

// current advances the cursor past decided candidates and returns the
// ballot's top still-live preference. Ballots that run out of preferences
// are exhausted: their residual weight is kept only for reporting.
func (b *stvBallot) current(live map[string]bool, exhausted *big.Rat) (string, bool) {
	if b.dead || b.weight.Sign() == 0 {
		return "", false
	}
	for b.idx < len(b.prefs) {
		if live[b.prefs[b.idx]] {
			return b.prefs[b.idx], true
		}
		b.idx++
	}
	b.dead = true
	exhausted.Add(exhausted, b.weight)
	return "", false
}

// stvState is the per-run working buffer for STV: ballots, the Droop
// quota, and weight sinks for reporting and conservation checks.
type stvState struct {
	ballots   []*stvBallot
	quota     *big.Rat
	exhausted *big.Rat
	retained  *big.Rat // quota weight kept by elected candidates
}

// newSTVState validates that every ballot carries a strict ranking and
// computes the Droop quota, floor(W/(m+1)) + 1.
func newSTVState(p *profile.Profile, seats int) (*stvState, error) {
	st := &stvState{exhausted: new(big.Rat), retained: new(big.Rat)}
	for i, b := range p.Ballots() {
		if !b.HasRanking() {
			return nil, fmt.Errorf("%w: ballot %d", ballot.ErrNoRanking, i+1)
		}
		if b.HasTies() {
			return nil, fmt.Errorf("%w: ballot %d", ErrTiedRanking, i+1)
		}
		prefs := make([]string, 0, len(b.Ranking()))
		for _, pos := range b.Ranking() {
			prefs = append(prefs, pos[0])
		}
		st.ballots = append(st.ballots, &stvBallot{prefs: prefs, weight: b.Weight()})
	}

	total := p.TotalWeight()
	div := new(big.Rat).Quo(total, big.NewRat(int64(seats+1), 1))
	floor := new(big.Int).Quo(div.Num(), div.Denom())
	st.quota = new(big.Rat).SetInt(floor)
	st.quota.Add(st.quota, big.NewRat(1, 1))
	return st, nil
}

// Quota returns the engine's Droop quota (STV methods only, else nil).
func (e *Engine) Quota() *big.Rat {
	if e.stv == nil {
		return nil
	}
	return new(big.Rat).Set(e.stv.quota)
}

// ExhaustedWeight reports the total weight of exhausted ballots so far
// (STV methods only, else nil).
func (e *Engine) ExhaustedWeight() *big.Rat {
	if e.stv == nil {
		return nil
	}
	return new(big.Rat).Set(e.stv.exhausted)
}

// stepSTV runs one STV round: elect everyone at or above quota and transfer
// their surpluses, or eliminate the single weakest candidate, or elect all
// remaining candidates when they exactly fill the open seats.
func (e *Engine) stepSTV() (stepResult, error) {
	st := e.stv
	live := make(map[string]bool, len(e.remaining))
	for _, c := range e.remaining {
		live[c] = true
	}

	tallies := make(map[string]*big.Rat, len(e.remaining))
	for _, c := range e.remaining {
		tallies[c] = new(big.Rat)
	}
	byCand := make(map[string][]*stvBallot)
	for _, b := range st.ballots {
		c, ok := b.current(live, st.exhausted)
		if !ok {
			continue
		}
		tallies[c].Add(tallies[c], b.weight)
		byCand[c] = append(byCand[c], b)
	}

	// Exactly enough candidates left to fill the open seats: elect them all.
	if len(e.remaining) == e.openSeats() {
		return stepResult{scores: tallies, newlyElected: byTallyDesc(e.remaining, tallies)}, nil
	}

	var reached []string
	for _, c := range e.remaining {
		if tallies[c].Cmp(st.quota) >= 0 {
			reached = append(reached, c)
		}
	}
	if len(reached) > 0 {
		// Decreasing-tally order; equal tallies order by name, which cannot
		// change the arithmetic because every surplus is computed from this
		// round's snapshot tallies.
		order := byTallyDesc(reached, tallies)
		for _, c := range order {
			live[c] = false
		}
		for _, c := range order {
			if err := e.transferSurplus(byCand[c], tallies[c]); err != nil {
				return stepResult{}, err
			}
		}
		return stepResult{scores: tallies, newlyElected: order}, nil
	}

	// Nobody reached quota: eliminate the single lowest-tally candidate and
	// let their full weight advance next round.
	low := new(big.Rat)
	var lowest []string
	for _, c := range e.remaining {
		switch {
		case len(lowest) == 0 || tallies[c].Cmp(low) < 0:
			low.Set(tallies[c])
			lowest = []string{c}
		case tallies[c].Cmp(low) == 0:
			lowest = append(lowest, c)
		}
	}

	loser := lowest[0]
	var settled []string
	if len(lowest) > 1 {
		order, err := tiebreak.Resolve(lowest, e.cfg.Tiebreak, e.profile, e.rng)
		if err != nil {
			return stepResult{}, err
		}
		loser = order[len(order)-1]
		settled = append([]string(nil), lowest...)
		sort.Strings(settled)
	}
	return stepResult{
		scores:          tallies,
		newlyEliminated: []string{loser},
		tiebreakSettled: settled,
	}, nil
}

// transferSurplus redistributes an elected candidate's surplus S = T - quota
// under the configured rule. Both rules conserve weight exactly: moved
// weight sums to S and the quota stays behind as retained weight.
func (e *Engine) transferSurplus(ballots []*stvBallot, tallyT *big.Rat) error {
	st := e.stv
	surplus := new(big.Rat).Sub(tallyT, st.quota)
	if surplus.Sign() <= 0 {
		// The whole tally is consumed by the quota; nothing moves.
		for _, b := range ballots {
			st.retained.Add(st.retained, b.weight)
			b.dead = true
		}
		return nil
	}

	switch e.cfg.Transfer {
	case FractionalTransfer:
		// Every contributing ballot continues at weight * S/T.
		ratio := new(big.Rat).Quo(surplus, tallyT)
		for _, b := range ballots {
			moved := new(big.Rat).Mul(b.weight, ratio)
			st.retained.Add(st.retained, new(big.Rat).Sub(b.weight, moved))
			b.weight = moved
			b.idx++
		}
		return nil

	case RandomTransfer:
		// Sample whole ballots without replacement until exactly S has
		// moved, splitting the boundary ballot if it overshoots.
		order := make([]int, len(ballots))
		for i := range order {
			order[i] = i
		}
		e.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		left := new(big.Rat).Set(surplus)
		for _, i := range order {
			b := ballots[i]
			if left.Sign() == 0 {
				st.retained.Add(st.retained, b.weight)
				b.dead = true
				continue
			}
			if b.weight.Cmp(left) <= 0 {
				left.Sub(left, b.weight)
				b.idx++
				continue
			}
			// Boundary ballot: move the remainder, retain the rest.
			st.retained.Add(st.retained, new(big.Rat).Sub(b.weight, left))
			b.weight = new(big.Rat).Set(left)
			b.idx++
			left.SetInt64(0)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown transfer rule %q", ErrBadConfig, e.cfg.Transfer)
}

// byTallyDesc orders candidates by decreasing tally, names breaking exact
// equality deterministically.
func byTallyDesc(cands []string, tallies map[string]*big.Rat) []string {
	out := append([]string(nil), cands...)
	sort.Slice(out, func(i, j int) bool {
		cmp := tallies[out[i]].Cmp(tallies[out[j]])
		if cmp != 0 {
			return cmp > 0
		}
		return out[i] < out[j]
	})
	return out
}
