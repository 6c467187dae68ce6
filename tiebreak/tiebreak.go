// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tiebreak

import (
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"sort"

	"github.com/danielhkuo/tallykit/profile"
	"github.com/danielhkuo/tallykit/tally"
)

var (
	// ErrUnresolvedTie reports an outcome-affecting tie that the active
	// policy could not settle.
	ErrUnresolvedTie = errors.New("tie cannot be resolved under the active policy")
	ErrUnknownPolicy = errors.New("unknown tiebreak policy")
	ErrNeedProfile   = errors.New("tiebreak policy requires a profile")
	ErrNeedRand      = errors.New("tiebreak policy requires a seeded random source")
)

// Policy selects how score ties at decision boundaries are settled.
type Policy string

const (
	// None refuses to settle ties; outcome-affecting ties become errors.
	None Policy = "none"
	// Random orders tied candidates by a uniform permutation drawn from the
	// caller's seeded source. Never reads global randomness.
	Random Policy = "random"
	// Borda orders tied candidates by Borda scores computed on the profile
	// restricted to the tied set, recursively until ordered or exhausted.
	Borda Policy = "borda"
	// FirstPlace orders tied candidates by first-preference tallies on the
	// restricted profile, recursively until ordered or exhausted.
	FirstPlace Policy = "first_place"
)

// ParsePolicy maps a config string to a Policy. The empty string means None.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return None, nil
	case None, Random, Borda, FirstPlace:
		return Policy(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Resolve produces a strict total order over the tied candidates. Borda and
// FirstPlace need the profile; Random needs rng. When a score policy bottoms
// out with candidates still tied, rng (if supplied) breaks the rest, and
// otherwise resolution fails with ErrUnresolvedTie.
//
// Callers are expected to invoke Resolve only for outcome-affecting ties;
// ties that cannot change who is elected or eliminated need no resolution.
func Resolve(tied []string, policy Policy, p *profile.Profile, rng *rand.Rand) ([]string, error) {
	ordered := append([]string(nil), tied...)
	sort.Strings(ordered)
	if len(ordered) <= 1 {
		return ordered, nil
	}

	switch policy {
	case None:
		return nil, fmt.Errorf("%w: %d candidates tied with no policy set", ErrUnresolvedTie, len(ordered))
	case Random:
		if rng == nil {
			return nil, fmt.Errorf("%w: policy %q", ErrNeedRand, policy)
		}
		rng.Shuffle(len(ordered), func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
		return ordered, nil
	case Borda, FirstPlace:
		if p == nil {
			return nil, fmt.Errorf("%w: policy %q", ErrNeedProfile, policy)
		}
		return resolveByScore(ordered, policy, p, rng)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
}

// resolveByScore orders tied candidates by their policy scores on the
// profile restricted to the tied set, recursing into equal-score subgroups.
func resolveByScore(tied []string, policy Policy, p *profile.Profile, rng *rand.Rand) ([]string, error) {
	restricted, err := restrict(p, tied)
	if err != nil {
		return nil, err
	}

	var scores map[string]*big.Rat
	switch policy {
	case Borda:
		scores, err = tally.Borda(restricted, nil)
	case FirstPlace:
		scores, err = tally.FirstPlace(restricted, tied)
	}
	if err != nil {
		return nil, err
	}
	for _, c := range tied {
		if scores[c] == nil {
			scores[c] = new(big.Rat)
		}
	}

	var out []string
	for _, group := range tally.RankingFromScores(scores) {
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		if len(group) == len(tied) {
			// Restriction could not separate anyone; scores are exhausted.
			if rng == nil {
				return nil, fmt.Errorf("%w: %q scores exhausted for %d candidates",
					ErrUnresolvedTie, policy, len(group))
			}
			shuffled := append([]string(nil), group...)
			rng.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			out = append(out, shuffled...)
			continue
		}
		sub, err := resolveByScore(group, policy, p, rng)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

// restrict removes every candidate outside keep from the profile.
func restrict(p *profile.Profile, keep []string) (*profile.Profile, error) {
	kept := make(map[string]bool, len(keep))
	for _, c := range keep {
		kept[c] = true
	}
	var drop []string
	for _, c := range p.Candidates() {
		if !kept[c] {
			drop = append(drop, c)
		}
	}
	if len(drop) == 0 {
		return p, nil
	}
	return p.RemoveCands(drop...)
}
