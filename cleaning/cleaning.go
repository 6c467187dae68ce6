// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cleaning

import (
	"github.com/danielhkuo/tallykit/ballot"
	"github.com/danielhkuo/tallykit/profile"
)

// Rule transforms a single ballot. Returning false drops the ballot from
// the cleaned profile.
type Rule func(ballot.Ballot) (ballot.Ballot, bool)

// Apply runs the rules in order over every ballot and condenses the result.
// The input profile is untouched; the cleaned profile keeps the original
// roster, so candidates stripped from every ballot still count as running.
func Apply(p *profile.Profile, rules ...Rule) (*profile.Profile, error) {
	var kept []ballot.Ballot
	for _, b := range p.Ballots() {
		ok := true
		for _, rule := range rules {
			b, ok = rule(b)
			if !ok {
				break
			}
		}
		if ok {
			kept = append(kept, b)
		}
	}

	out, err := profile.New(kept, profile.WithCandidates(p.Candidates()...))
	if err != nil {
		return nil, err
	}
	return out.Condense()
}

// DropEmpty removes ballots carrying neither a ranking nor scores.
func DropEmpty() Rule {
	return func(b ballot.Ballot) (ballot.Ballot, bool) {
		return b, b.HasRanking() || b.HasScores()
	}
}

// DropZeroWeight removes ballots whose weight is zero.
func DropZeroWeight() Rule {
	return func(b ballot.Ballot) (ballot.Ballot, bool) {
		return b, b.Weight().Sign() != 0
	}
}

// Strike removes the named candidates from every ballot. Ballots emptied by
// the strike survive at full weight; chain DropEmpty to remove them.
func Strike(cands ...string) Rule {
	return func(b ballot.Ballot) (ballot.Ballot, bool) {
		return b.RemoveCands(cands...), true
	}
}

// RemoveEmptyBallots is the common one-step clean: drop empty and
// zero-weight ballots, keeping the full roster.
func RemoveEmptyBallots(p *profile.Profile) (*profile.Profile, error) {
	return Apply(p, DropZeroWeight(), DropEmpty())
}
