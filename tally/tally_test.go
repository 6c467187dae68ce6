// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"math/big"
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

func profileNoTies(t *testing.T) *profile.Profile {
	t.Helper()
	p, err := profile.New([]ballot.Ballot{
		ranked(1, 1, pos("A"), pos("B")),
		ranked(1, 2, pos("A"), pos("B"), pos("C")),
		ranked(3, 1, pos("C"), pos("B"), pos("A")),
	})
	require.NoError(t, err)
	return p
}

func profileWithTies(t *testing.T) *profile.Profile {
	t.Helper()
	p, err := profile.New([]ballot.Ballot{
		ranked(1, 1, pos("A", "B")),
		ranked(1, 2, pos("A", "B", "C")),
		ranked(3, 1, pos("A"), pos("C"), pos("B")),
	})
	require.NoError(t, err)
	return p
}

func assertScores(t *testing.T, got map[string]*big.Rat, want map[string]*big.Rat) {
	t.Helper()
	require.Len(t, got, len(want))
	for cand, w := range want {
		require.NotNil(t, got[cand], "missing %q", cand)
		assert.Equal(t, 0, got[cand].Cmp(w), "%q: got %s want %s", cand, got[cand].RatString(), w.RatString())
	}
}

func TestFirstPlace(t *testing.T) {
	votes, err := FirstPlace(profileNoTies(t), nil)
	require.NoError(t, err)
	assertScores(t, votes, map[string]*big.Rat{
		"A": big.NewRat(3, 2),
		"B": new(big.Rat),
		"C": big.NewRat(3, 1),
	})
}

func TestFirstPlaceSplitsTies(t *testing.T) {
	votes, err := FirstPlace(profileWithTies(t), nil)
	require.NoError(t, err)
	assertScores(t, votes, map[string]*big.Rat{
		"A": big.NewRat(11, 3),
		"B": big.NewRat(2, 3),
		"C": big.NewRat(1, 6),
	})
}

func TestFirstPlaceSkipsDecided(t *testing.T) {
	// With A decided, the A-first ballots fall through to their next choice.
	votes, err := FirstPlace(profileNoTies(t), []string{"B", "C"})
	require.NoError(t, err)
	assertScores(t, votes, map[string]*big.Rat{
		"B": big.NewRat(3, 2),
		"C": big.NewRat(3, 1),
	})
}

func TestFirstPlaceRequiresRankings(t *testing.T) {
	p, err := profile.New([]ballot.Ballot{
		ballot.Must(ballot.WithScores(map[string]*big.Rat{"A": big.NewRat(3, 1)})),
	})
	require.NoError(t, err)
	_, err = FirstPlace(p, nil)
	assert.ErrorIs(t, err, ballot.ErrNoRanking)
}

func TestLastPlace(t *testing.T) {
	votes, err := LastPlace(profileNoTies(t), nil)
	require.NoError(t, err)
	assertScores(t, votes, map[string]*big.Rat{
		"A": big.NewRat(3, 1),
		"B": big.NewRat(1, 1),
		"C": big.NewRat(1, 2),
	})

	// With A decided, its vetoes fall back to the next-lowest live position.
	votes, err = LastPlace(profileNoTies(t), []string{"B", "C"})
	require.NoError(t, err)
	assertScores(t, votes, map[string]*big.Rat{
		"B": big.NewRat(4, 1),
		"C": big.NewRat(1, 2),
	})
}

func TestLastPlaceSplitsTies(t *testing.T) {
	votes, err := LastPlace(profileWithTies(t), nil)
	require.NoError(t, err)
	// Tied sets at the lowest live position split the veto weight evenly.
	assertScores(t, votes, map[string]*big.Rat{
		"A": big.NewRat(2, 3),
		"B": big.NewRat(11, 3),
		"C": big.NewRat(1, 6),
	})
}

func TestScoreVectorValidate(t *testing.T) {
	assert.ErrorIs(t, ScoreVector{}.Validate(3), ErrBadScoreVector)
	assert.ErrorIs(t, Vector(3, 2, -1).Validate(3), ErrBadScoreVector)
	assert.ErrorIs(t, Vector(3, 2, 3).Validate(3), ErrBadScoreVector)
	assert.ErrorIs(t, Vector(3, 2, 1, 0).Validate(3), ErrBadScoreVector)
	assert.NoError(t, Vector(3, 2, 1, 0).Validate(4))
	assert.NoError(t, Vector(3, 3, 3, 3).Validate(4))
	assert.NoError(t, Vector(3, 2).Validate(4))
}

func TestBordaDefaultVector(t *testing.T) {
	scores, err := Borda(profileNoTies(t), nil)
	require.NoError(t, err)
	assertScores(t, scores, map[string]*big.Rat{
		"A": big.NewRat(3, 1),
		"B": big.NewRat(9, 2),
		"C": big.NewRat(6, 1),
	})
}

func TestBordaWithTies(t *testing.T) {
	// Tied spans average their slots' points; unranked candidates split the
	// leftover points.
	scores, err := Borda(profileWithTies(t), nil)
	require.NoError(t, err)
	assertScores(t, scores, map[string]*big.Rat{
		"A": big.NewRat(8, 1),
		"B": big.NewRat(2, 1),
		"C": big.NewRat(7, 2),
	})
}

func TestBordaExplicitVector(t *testing.T) {
	p, err := profile.New(
		[]ballot.Ballot{
			ranked(1, 1, pos("A", "B"), pos("D")),
			ranked(1, 2, pos("A", "B", "C", "D")),
			ranked(3, 1, pos("A"), pos("C"), pos("B")),
			ranked(1, 1, pos("A"), pos("C"), pos("B"), pos("D"), pos("E")),
		},
		profile.WithCandidates("A", "B", "C", "D", "E"),
	)
	require.NoError(t, err)

	scores, err := Borda(p, Vector(5, 4, 3, 2, 1))
	require.NoError(t, err)
	assertScores(t, scores, map[string]*big.Rat{
		"A": big.NewRat(105, 4),
		"B": big.NewRat(73, 4),
		"C": big.NewRat(77, 4),
		"D": big.NewRat(45, 4),
		"E": big.NewRat(30, 4),
	})
}

func TestBordaRejectsBadVector(t *testing.T) {
	_, err := Borda(profileNoTies(t), Vector(1, 2, 3))
	assert.ErrorIs(t, err, ErrBadScoreVector)
}

func TestMentions(t *testing.T) {
	got, err := Mentions(profileNoTies(t))
	require.NoError(t, err)
	assertScores(t, got, map[string]*big.Rat{
		"A": big.NewRat(9, 2),
		"B": big.NewRat(9, 2),
		"C": big.NewRat(7, 2),
	})
}

func TestFromBallotScores(t *testing.T) {
	p, err := profile.New([]ballot.Ballot{
		ballot.Must(
			ballot.WithRanking(pos("A")),
			ballot.WithScores(map[string]*big.Rat{"A": big.NewRat(2, 1), "C": big.NewRat(4, 1)}),
			ballot.WithWeightInt(2),
		),
		ballot.Must(ballot.WithScores(map[string]*big.Rat{"A": big.NewRat(3, 1)})),
	})
	require.NoError(t, err)

	scores, err := FromBallotScores(p)
	require.NoError(t, err)
	assertScores(t, scores, map[string]*big.Rat{
		"A": big.NewRat(7, 1),
		"C": big.NewRat(8, 1),
	})
}

func TestFromBallotScoresRequiresScores(t *testing.T) {
	p, err := profile.New([]ballot.Ballot{ranked(2, 1, pos("A"))})
	require.NoError(t, err)
	_, err = FromBallotScores(p)
	assert.ErrorIs(t, err, ErrNoScores)
}

func TestRankingFromScores(t *testing.T) {
	scores := map[string]*big.Rat{
		"A": big.NewRat(3, 1),
		"B": big.NewRat(2, 1),
		"C": big.NewRat(3, 1),
		"D": big.NewRat(2, 1),
		"F": big.NewRat(5, 2),
	}
	got := RankingFromScores(scores)
	want := []ballot.Position{
		pos("A", "C"),
		pos("F"),
		pos("B", "D"),
	}
	assert.Equal(t, want, got)
}
