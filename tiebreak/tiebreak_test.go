// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tiebreak

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/tallykit/ballot"
	"github.com/danielhkuo/tallykit/profile"
)

func pos(cands ...string) ballot.Position { return ballot.NewPosition(cands...) }

func ranked(num, den int64, positions ...ballot.Position) ballot.Ballot {
	return ballot.Must(ballot.WithRanking(positions...), ballot.WithWeight(big.NewRat(num, den)))
}

// tiedProfile has first-preference order A > B > C and Borda order A > C > B
// over the full candidate set, which lets the two policies disagree.
func tiedProfile(t *testing.T) *profile.Profile {
	t.Helper()
	p, err := profile.New([]ballot.Ballot{
		ranked(1, 1, pos("A", "B")),
		ranked(1, 2, pos("A", "B", "C")),
		ranked(3, 1, pos("A"), pos("C"), pos("B")),
	})
	require.NoError(t, err)
	return p
}

func TestParsePolicy(t *testing.T) {
	for _, s := range []string{"", "none", "random", "borda", "first_place"} {
		_, err := ParsePolicy(s)
		assert.NoError(t, err, s)
	}
	_, err := ParsePolicy("mine")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestResolveFirstPlace(t *testing.T) {
	order, err := Resolve([]string{"C", "B", "A"}, FirstPlace, tiedProfile(t), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestResolveBorda(t *testing.T) {
	order, err := Resolve([]string{"C", "B", "A"}, Borda, tiedProfile(t), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, order)
}

func TestResolveRandomDeterministic(t *testing.T) {
	first, err := Resolve([]string{"A", "B", "C", "D"}, Random, nil, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	second, err := Resolve([]string{"D", "C", "B", "A"}, Random, nil, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	// Same seed, same permutation, regardless of input order.
	assert.Equal(t, first, second)
	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, first)
}

func TestResolveNone(t *testing.T) {
	_, err := Resolve([]string{"A", "B"}, None, tiedProfile(t), nil)
	assert.ErrorIs(t, err, ErrUnresolvedTie)

	// A single candidate is not a tie.
	order, err := Resolve([]string{"A"}, None, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, order)
}

func TestResolveMissingInputs(t *testing.T) {
	_, err := Resolve([]string{"A", "B"}, Random, nil, nil)
	assert.ErrorIs(t, err, ErrNeedRand)

	_, err = Resolve([]string{"A", "B"}, Borda, nil, nil)
	assert.ErrorIs(t, err, ErrNeedProfile)

	_, err = Resolve([]string{"A", "B"}, FirstPlace, nil, nil)
	assert.ErrorIs(t, err, ErrNeedProfile)

	_, err = Resolve([]string{"A", "B"}, Policy("mine"), nil, nil)
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestResolveScoresExhausted(t *testing.T) {
	// Perfectly symmetric support: no score policy can separate A and B.
	p, err := profile.New([]ballot.Ballot{
		ranked(2, 1, pos("A"), pos("B")),
		ranked(2, 1, pos("B"), pos("A")),
	})
	require.NoError(t, err)

	_, err = Resolve([]string{"A", "B"}, FirstPlace, p, nil)
	assert.ErrorIs(t, err, ErrUnresolvedTie)

	// With a seeded source the remainder is broken randomly, and replays.
	first, err := Resolve([]string{"A", "B"}, FirstPlace, p, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	second, err := Resolve([]string{"A", "B"}, FirstPlace, p, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
