// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package profile

import (
	"github.com/danielhkuo/tallykit/ballot"
)

// RemoveCands strikes the named candidates from the roster and from every
// ballot, then condenses the result. Ballots left with no ranking and no
// scores are dropped entirely, so total weight may shrink.
func (p *Profile) RemoveCands(cands ...string) (*Profile, error) {
	gone := make(map[string]bool, len(cands))
	for _, c := range cands {
		gone[c] = true
	}

	roster := make([]string, 0, len(p.candidates))
	for _, c := range p.candidates {
		if !gone[c] {
			roster = append(roster, c)
		}
	}

	stripped := make([]ballot.Ballot, 0, len(p.ballots))
	for _, b := range p.ballots {
		left := b.RemoveCands(cands...)
		if !left.HasRanking() && !left.HasScores() {
			continue
		}
		stripped = append(stripped, left)
	}

	out, err := New(stripped, WithCandidates(roster...))
	if err != nil {
		return nil, err
	}
	return out.Condense()
}

// AddMissingCands appends, to every ranked ballot, a final position tying
// all roster candidates the ballot does not rank. Ballots that already rank
// the full roster are unchanged. Returns a new Profile.
func (p *Profile) AddMissingCands() (*Profile, error) {
	filled := make([]ballot.Ballot, 0, len(p.ballots))
	for _, b := range p.ballots {
		if !b.HasRanking() {
			return nil, ballot.ErrNoRanking
		}
		ranked := make(map[string]bool)
		ranking := b.Ranking()
		for _, pos := range ranking {
			for _, c := range pos {
				ranked[c] = true
			}
		}
		var missing []string
		for _, c := range p.candidates {
			if !ranked[c] {
				missing = append(missing, c)
			}
		}
		if len(missing) == 0 {
			filled = append(filled, b)
			continue
		}
		ranking = append(ranking, ballot.NewPosition(missing...))
		full, err := ballot.New(
			ballot.WithRanking(ranking...),
			ballot.WithScores(b.Scores()),
			ballot.WithWeight(b.Weight()),
		)
		if err != nil {
			return nil, err
		}
		filled = append(filled, full)
	}
	return New(filled, WithCandidates(p.candidates...))
}

// ResolveTies expands every ballot with tied positions into equal-weight
// strict-order sub-ballots and condenses the result. Unranked ballots pass
// through untouched. Total weight is preserved exactly.
func (p *Profile) ResolveTies() (*Profile, error) {
	resolved := make([]ballot.Ballot, 0, len(p.ballots))
	for _, b := range p.ballots {
		if !b.HasRanking() || !b.HasTies() {
			resolved = append(resolved, b)
			continue
		}
		subs, err := ballot.ExpandTied(b)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, subs...)
	}
	out, err := New(resolved, WithCandidates(p.candidates...))
	if err != nil {
		return nil, err
	}
	return out.Condense()
}
