// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"fmt"
	"math/big"

	"github.com/danielhkuo/tallykit/profile"
	"github.com/danielhkuo/tallykit/tally"
)

// stepPlurality elects the top m candidates by first-preference tally in a
// single round. Unelected candidates stay Remaining; plurality never
// eliminates anyone.
func (e *Engine) stepPlurality() (stepResult, error) {
	scores, err := tally.FirstPlace(e.profile, nil)
	if err != nil {
		return stepResult{}, err
	}
	return e.electTopResult(fillScores(scores, e.profile.Candidates()))
}

// stepBorda elects the top m candidates by positional score in one round,
// using the configured vector or the (n-1, …, 0) default.
func (e *Engine) stepBorda() (stepResult, error) {
	scores, err := tally.Borda(e.profile, e.cfg.ScoreVector)
	if err != nil {
		return stepResult{}, err
	}
	return e.electTopResult(scores)
}

// stepCondorcetBorda ranks by pairwise-majority wins first and raw Borda
// score second: each pairwise win is worth strictly more than any possible
// Borda total, so a candidate who beats all others pairwise is guaranteed
// the top rank no matter their positional score.
func (e *Engine) stepCondorcetBorda() (stepResult, error) {
	borda, err := tally.Borda(e.profile, e.cfg.ScoreVector)
	if err != nil {
		return stepResult{}, err
	}

	vec := e.cfg.ScoreVector
	if len(vec) == 0 {
		vec = tally.DefaultVector(e.profile.NumCandidates())
	}
	// bound > any achievable Borda score.
	bound := new(big.Rat).Mul(e.profile.TotalWeight(), vec[0])
	bound.Add(bound, big.NewRat(1, 1))

	wins, err := pairwiseWins(e.profile, e.profile.Candidates())
	if err != nil {
		return stepResult{}, err
	}

	scores := make(map[string]*big.Rat, len(borda))
	for c, b := range borda {
		adj := new(big.Rat).Mul(big.NewRat(int64(wins[c]), 1), bound)
		scores[c] = adj.Add(adj, b)
	}
	return e.electTopResult(scores)
}

// stepBallotScores covers the highest-score and rating rules: per-candidate
// sums of the ballots' native score maps, ranking ignored. Rating differs
// only by the per-candidate limit enforced at construction.
func (e *Engine) stepBallotScores() (stepResult, error) {
	scores, err := tally.FromBallotScores(e.profile)
	if err != nil {
		return stepResult{}, err
	}
	return e.electTopResult(fillScores(scores, e.profile.Candidates()))
}

// stepCumulative gives a candidate one point per ranked appearance,
// regardless of position, weighted by ballot weight.
func (e *Engine) stepCumulative() (stepResult, error) {
	scores, err := tally.Mentions(e.profile)
	if err != nil {
		return stepResult{}, err
	}
	return e.electTopResult(fillScores(scores, e.profile.Candidates()))
}

// stepLimited is positional voting with a unit vector: the first PointLimit
// positions score one point each, the rest score zero.
func (e *Engine) stepLimited() (stepResult, error) {
	vec := make(tally.ScoreVector, e.cfg.PointLimit)
	for i := range vec {
		vec[i] = big.NewRat(1, 1)
	}
	scores, err := tally.Borda(e.profile, vec)
	if err != nil {
		return stepResult{}, err
	}
	return e.electTopResult(scores)
}

// electTopResult is the shared single-round ending: elect the top m from
// the given scores and terminate.
func (e *Engine) electTopResult(scores map[string]*big.Rat) (stepResult, error) {
	elected, settled, err := e.electTop(scores, e.cfg.Seats)
	if err != nil {
		return stepResult{}, err
	}
	return stepResult{
		scores:          scores,
		newlyElected:    elected,
		tiebreakSettled: settled,
		terminal:        true,
	}, nil
}

// checkRatingLimit rejects profiles whose ballots score any candidate above
// the configured rating limit.
func checkRatingLimit(p *profile.Profile, limit int64) error {
	max := big.NewRat(limit, 1)
	for i, b := range p.Ballots() {
		for cand, s := range b.Scores() {
			if s.Cmp(max) > 0 {
				return fmt.Errorf("%w: ballot %d scores %q at %s, above rating limit %d",
					ErrBadConfig, i+1, cand, s.RatString(), limit)
			}
		}
	}
	return nil
}
