// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"math/big"

	"github.com/danielhkuo/tallykit/tally"
)

// stepDictator elects one candidate per round, drawn with probability
// proportional to the first-preference tally over the remaining candidates.
// The boosted variant squares the tallies, sharpening the draw toward the
// front-runners.
func (e *Engine) stepDictator(boosted bool) (stepResult, error) {
	tallies, err := tally.FirstPlace(e.profile, e.remaining)
	if err != nil {
		return stepResult{}, err
	}

	if len(e.remaining) == e.openSeats() {
		return stepResult{scores: tallies, newlyElected: byTallyDesc(e.remaining, tallies)}, nil
	}

	weights := tallies
	if boosted {
		weights = make(map[string]*big.Rat, len(tallies))
		for c, t := range tallies {
			weights[c] = new(big.Rat).Mul(t, t)
		}
	}
	winner := e.weightedDraw(e.remaining, weights)
	return stepResult{scores: tallies, newlyElected: []string{winner}}, nil
}

// stepPluralityVeto eliminates one candidate per round, drawn with
// probability proportional to the last-preference (veto) tally, until the
// survivors exactly fill the open seats.
func (e *Engine) stepPluralityVeto() (stepResult, error) {
	if len(e.remaining) == e.openSeats() {
		tallies, err := tally.FirstPlace(e.profile, e.remaining)
		if err != nil {
			return stepResult{}, err
		}
		return stepResult{scores: tallies, newlyElected: byTallyDesc(e.remaining, tallies)}, nil
	}

	vetoes, err := tally.LastPlace(e.profile, e.remaining)
	if err != nil {
		return stepResult{}, err
	}
	loser := e.weightedDraw(e.remaining, vetoes)
	return stepResult{scores: vetoes, newlyEliminated: []string{loser}}, nil
}

// weightedDraw picks one candidate with probability proportional to their
// weight, falling back to a uniform draw when every weight is zero. Candidate
// order is fixed by the caller, so equal seeds give equal draws.
func (e *Engine) weightedDraw(cands []string, weights map[string]*big.Rat) string {
	total := new(big.Rat)
	for _, c := range cands {
		if w := weights[c]; w != nil {
			total.Add(total, w)
		}
	}
	if total.Sign() == 0 {
		return cands[e.rng.Intn(len(cands))]
	}

	r := ratFromFloat(e.rng.Float64())
	r.Mul(r, total)
	acc := new(big.Rat)
	for _, c := range cands {
		if w := weights[c]; w != nil {
			acc.Add(acc, w)
		}
		if acc.Cmp(r) > 0 {
			return c
		}
	}
	return cands[len(cands)-1]
}

// ratFromFloat converts a draw in [0, 1) exactly; Float64 values are always
// representable as rationals.
func ratFromFloat(f float64) *big.Rat {
	r := new(big.Rat)
	r.SetFloat64(f)
	return r
}
