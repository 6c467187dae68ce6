// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/tallykit/ballot"
	"github.com/danielhkuo/tallykit/profile"
	"github.com/danielhkuo/tallykit/tally"
	"github.com/danielhkuo/tallykit/tiebreak"
)

func strict(w int64, names ...string) ballot.Ballot {
	positions := make([]ballot.Position, len(names))
	for i, n := range names {
		positions[i] = ballot.NewPosition(n)
	}
	return ballot.Must(ballot.WithWeightInt(w), ballot.WithRanking(positions...))
}

func mustProfile(t *testing.T, ballots []ballot.Ballot, opts ...profile.Option) *profile.Profile {
	t.Helper()
	p, err := profile.New(ballots, opts...)
	require.NoError(t, err)
	return p
}

// requirePartition checks the invariant every round must satisfy: elected,
// eliminated, and remaining are disjoint and together cover the roster.
func requirePartition(t *testing.T, p *profile.Profile, r Round) {
	t.Helper()
	seen := make(map[string]int)
	for _, c := range r.Elected() {
		seen[c]++
	}
	for _, c := range r.Eliminated() {
		seen[c]++
	}
	for _, c := range r.Remaining() {
		seen[c]++
	}
	require.Len(t, seen, p.NumCandidates())
	for _, c := range p.Candidates() {
		require.Equal(t, 1, seen[c], "candidate %q must appear exactly once", c)
	}
}

func TestPluralitySingleRound(t *testing.T) {
	p := mustProfile(t, []ballot.Ballot{
		strict(18, "A", "B", "C"),
		strict(12, "B", "A", "C"),
		strict(6, "C", "B", "A"),
	})

	e, err := New(p, Config{Method: Plurality, Seats: 1})
	require.NoError(t, err)

	r, err := e.Step()
	require.NoError(t, err)
	assert.True(t, e.Done())
	assert.Equal(t, 1, r.Number())
	assert.Equal(t, []string{"A"}, r.Elected())
	assert.Empty(t, r.Eliminated())
	assert.Equal(t, []string{"B", "C"}, r.Remaining())
	requirePartition(t, p, r)

	scores := r.Scores()
	assert.Equal(t, 0, scores["A"].Cmp(big.NewRat(18, 1)))
	assert.Equal(t, 0, scores["B"].Cmp(big.NewRat(12, 1)))
	assert.Equal(t, 0, scores["C"].Cmp(big.NewRat(6, 1)))

	_, err = e.Step()
	assert.ErrorIs(t, err, ErrComplete)
}

func TestUnresolvedTieAppendsNothing(t *testing.T) {
	p := mustProfile(t, []ballot.Ballot{
		strict(5, "A", "B"),
		strict(5, "B", "A"),
	})

	e, err := New(p, Config{Method: Plurality, Seats: 1})
	require.NoError(t, err)

	_, err = e.Step()
	assert.ErrorIs(t, err, tiebreak.ErrUnresolvedTie)
	assert.Empty(t, e.History())
	assert.False(t, e.Done())
}

func TestTieWithinElectedGroupNeedsNoPolicy(t *testing.T) {
	// A and B tie, but both fit the two seats: no resolution required.
	p := mustProfile(t, []ballot.Ballot{
		strict(5, "A", "B", "C"),
		strict(5, "B", "A", "C"),
		strict(2, "C", "A", "B"),
	})

	e, err := New(p, Config{Method: Plurality, Seats: 2})
	require.NoError(t, err)

	r, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, r.Elected())
	assert.Empty(t, r.TiebreakSettled())
}

func TestBordaDefaultVector(t *testing.T) {
	// Vector (2, 1, 0): A = 2*2+1 = 5, B = 2+2*1... computed below.
	p := mustProfile(t, []ballot.Ballot{
		strict(2, "A", "B", "C"),
		strict(1, "B", "A", "C"),
	})

	e, err := New(p, Config{Method: Borda, Seats: 1})
	require.NoError(t, err)
	r, err := e.Step()
	require.NoError(t, err)

	scores := r.Scores()
	assert.Equal(t, 0, scores["A"].Cmp(big.NewRat(5, 1))) // 2*2 + 1*1
	assert.Equal(t, 0, scores["B"].Cmp(big.NewRat(4, 1))) // 2*1 + 1*2
	assert.Equal(t, 0, scores["C"].Cmp(big.NewRat(0, 1)))
	assert.Equal(t, []string{"A"}, r.Elected())
}

func TestCondorcetBordaPrefersPairwiseWinner(t *testing.T) {
	// B carries the higher Borda score (9 vs 8) but A beats both B and C
	// pairwise, so Condorcet-Borda must put A first.
	ballots := []ballot.Ballot{
		strict(3, "A", "B", "C"),
		strict(2, "B", "C", "A"),
		strict(1, "B", "A", "C"),
		strict(1, "C", "A", "B"),
	}

	borda, err := New(mustProfile(t, ballots), Config{Method: Borda, Seats: 1})
	require.NoError(t, err)
	rb, err := borda.Step()
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, rb.Elected())

	cb, err := New(mustProfile(t, ballots), Config{Method: CondorcetBorda, Seats: 1})
	require.NoError(t, err)
	rc, err := cb.Step()
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, rc.Elected())

	// Same result with an explicit vector; the pairwise bound scales with it.
	cbv, err := New(mustProfile(t, ballots),
		Config{Method: CondorcetBorda, Seats: 1, ScoreVector: tally.Vector(4, 2, 0)})
	require.NoError(t, err)
	rv, err := cbv.Step()
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, rv.Elected())
}

func TestSTVQuotaAndFractionalTransfer(t *testing.T) {
	p := mustProfile(t, []ballot.Ballot{
		strict(6, "A", "C", "D", "B"),
		strict(2, "B", "C"),
		strict(1, "C", "B"),
		strict(3, "D", "B"),
	})

	e, err := New(p, Config{Method: STV, Seats: 2, Tiebreak: tiebreak.FirstPlace})
	require.NoError(t, err)
	require.Equal(t, 0, e.Quota().Cmp(big.NewRat(5, 1))) // floor(12/3) + 1

	// Round 1: A holds 6 >= 5, elected; surplus 1 flows to C at ratio 1/6.
	r1, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, r1.Elected())
	requirePartition(t, p, r1)

	// Round 2: B 2, C 2, D 3; the B/C tie resolves by first-preference
	// strength on the restricted profile, so B goes.
	r2, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, r2.Eliminated())
	assert.Equal(t, []string{"B", "C"}, r2.TiebreakSettled())
	scores2 := r2.Scores()
	assert.Equal(t, 0, scores2["B"].Cmp(big.NewRat(2, 1)))
	assert.Equal(t, 0, scores2["C"].Cmp(big.NewRat(2, 1)))
	assert.Equal(t, 0, scores2["D"].Cmp(big.NewRat(3, 1)))

	// Round 3: C 4, D 3; D eliminated.
	r3, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "D"}, r3.Eliminated())

	// Round 4: C alone for the last seat.
	r4, err := e.Step()
	require.NoError(t, err)
	assert.True(t, e.Done())
	assert.Equal(t, []string{"A", "C"}, r4.Elected())
	requirePartition(t, p, r4)

	// D's supporters had no later preference: their weight exhausted.
	assert.Equal(t, 0, e.ExhaustedWeight().Cmp(big.NewRat(3, 1)))
}

func TestSTVElectsAllAtQuotaInRoundOne(t *testing.T) {
	p := mustProfile(t, []ballot.Ballot{
		strict(4, "A", "B", "C"),
		strict(4, "B", "C", "A"),
		strict(2, "C", "B", "A"),
	})

	e, err := New(p, Config{Method: STV, Seats: 2})
	require.NoError(t, err)
	require.Equal(t, 0, e.Quota().Cmp(big.NewRat(4, 1)))

	r, err := e.Step()
	require.NoError(t, err)
	assert.True(t, e.Done())
	assert.Equal(t, []string{"A", "B"}, r.Elected())
}

func TestSTVRejectsTiedRankings(t *testing.T) {
	tied := ballot.Must(ballot.WithRanking(ballot.NewPosition("A", "B"), ballot.NewPosition("C")))
	p := mustProfile(t, []ballot.Ballot{tied, strict(1, "C", "A", "B")})

	_, err := New(p, Config{Method: STV, Seats: 1})
	assert.ErrorIs(t, err, ErrTiedRanking)
}

func TestIRVDefaultsToOneSeat(t *testing.T) {
	p := mustProfile(t, []ballot.Ballot{
		strict(4, "A", "B", "C"),
		strict(3, "B", "A", "C"),
		strict(2, "C", "B", "A"),
	})

	e, err := New(p, Config{Method: IRV})
	require.NoError(t, err)

	out, err := e.Run()
	require.NoError(t, err)
	// C eliminated first; C's support moves to B, who reaches quota 5.
	assert.Equal(t, []string{"B"}, out.Elected())
	assert.Equal(t, []string{"C"}, out.Eliminated())
	assert.Equal(t, 2, out.NumRounds())

	_, err = New(p, Config{Method: IRV, Seats: 2})
	assert.ErrorIs(t, err, ErrBadConfig)
}

func TestDominatingSetsElectsCondorcetWinnerAlone(t *testing.T) {
	p := mustProfile(t, []ballot.Ballot{
		strict(3, "A", "B", "C"),
		strict(2, "B", "C", "A"),
		strict(1, "B", "A", "C"),
		strict(1, "C", "A", "B"),
	})

	e, err := New(p, Config{Method: DominatingSets, Seats: 1})
	require.NoError(t, err)
	r, err := e.Step()
	require.NoError(t, err)
	assert.True(t, e.Done())
	assert.Equal(t, []string{"A"}, r.Elected())
}

func TestDominatingSetsCycle(t *testing.T) {
	cycle := []ballot.Ballot{
		strict(1, "A", "B", "C"),
		strict(1, "B", "C", "A"),
		strict(1, "C", "A", "B"),
	}

	// The whole cycle is one tier; with no policy the cut is unresolvable.
	e, err := New(mustProfile(t, cycle), Config{Method: DominatingSets, Seats: 1})
	require.NoError(t, err)
	_, err = e.Step()
	assert.ErrorIs(t, err, tiebreak.ErrUnresolvedTie)

	// A seeded random policy resolves it, and equal seeds agree.
	var winners []string
	for i := 0; i < 2; i++ {
		e, err := New(mustProfile(t, cycle),
			Config{Method: DominatingSets, Seats: 1, Tiebreak: tiebreak.Random, Seed: Seed(7)})
		require.NoError(t, err)
		out, err := e.Run()
		require.NoError(t, err)
		require.Len(t, out.Elected(), 1)
		winners = append(winners, out.Elected()[0])
	}
	assert.Equal(t, winners[0], winners[1])

	// Two seats swallow the tier whole, no policy needed.
	e, err = New(mustProfile(t, cycle), Config{Method: DominatingSets, Seats: 3})
	require.NoError(t, err)
	out, err := e.Run()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, out.Elected())
}

func scored(w int64, scores map[string]int64) ballot.Ballot {
	m := make(map[string]*big.Rat, len(scores))
	for c, v := range scores {
		m[c] = big.NewRat(v, 1)
	}
	return ballot.Must(ballot.WithWeightInt(w), ballot.WithScores(m))
}

func TestHighestScore(t *testing.T) {
	p := mustProfile(t, []ballot.Ballot{
		scored(2, map[string]int64{"A": 3, "B": 1}),
		scored(1, map[string]int64{"B": 5, "C": 2}),
	})

	e, err := New(p, Config{Method: HighestScore, Seats: 1})
	require.NoError(t, err)
	r, err := e.Step()
	require.NoError(t, err)
	// A = 6, B = 7, C = 2.
	assert.Equal(t, []string{"B"}, r.Elected())
	assert.Equal(t, 0, r.Scores()["A"].Cmp(big.NewRat(6, 1)))
}

func TestRatingEnforcesLimit(t *testing.T) {
	p := mustProfile(t, []ballot.Ballot{
		scored(1, map[string]int64{"A": 4, "B": 2}),
	})

	_, err := New(p, Config{Method: Rating, Seats: 1, RatingLimit: 3})
	assert.ErrorIs(t, err, ErrBadConfig)

	e, err := New(p, Config{Method: Rating, Seats: 1, RatingLimit: 5})
	require.NoError(t, err)
	out, err := e.Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, out.Elected())
}

func TestCumulative(t *testing.T) {
	p := mustProfile(t, []ballot.Ballot{
		strict(3, "A", "B"),
		strict(2, "B"),
		strict(1, "C", "B", "A"),
	})

	e, err := New(p, Config{Method: Cumulative, Seats: 1})
	require.NoError(t, err)
	r, err := e.Step()
	require.NoError(t, err)
	// Every ranked appearance counts once: A = 4, B = 6, C = 1.
	assert.Equal(t, []string{"B"}, r.Elected())
	assert.Equal(t, 0, r.Scores()["A"].Cmp(big.NewRat(4, 1)))
	assert.Equal(t, 0, r.Scores()["C"].Cmp(big.NewRat(1, 1)))
}

func TestLimitedCountsTopPositionsOnly(t *testing.T) {
	p := mustProfile(t, []ballot.Ballot{
		strict(3, "A", "B", "C"),
		strict(2, "C", "B", "A"),
	})

	e, err := New(p, Config{Method: Limited, Seats: 1, PointLimit: 2})
	require.NoError(t, err)
	r, err := e.Step()
	require.NoError(t, err)
	// Top two positions score one point each: A = 3, B = 5, C = 2.
	assert.Equal(t, []string{"B"}, r.Elected())
	assert.Equal(t, 0, r.Scores()["B"].Cmp(big.NewRat(5, 1)))
}

func TestStochasticReplayIsBitExact(t *testing.T) {
	ballots := []ballot.Ballot{
		strict(5, "A", "B", "C", "D"),
		strict(4, "B", "C", "A", "D"),
		strict(3, "C", "D", "B", "A"),
		strict(2, "D", "A", "C", "B"),
	}

	for _, method := range []Method{RandomDictator, BoostedRandomDictator, PluralityVeto} {
		t.Run(string(method), func(t *testing.T) {
			cfg := Config{Method: method, Seats: 2, Seed: Seed(99)}

			first, err := New(mustProfile(t, ballots), cfg)
			require.NoError(t, err)
			out1, err := first.Run()
			require.NoError(t, err)

			second, err := New(mustProfile(t, ballots), cfg)
			require.NoError(t, err)
			out2, err := second.Run()
			require.NoError(t, err)

			recs1, recs2 := out1.Records(), out2.Records()
			require.Len(t, recs2, len(recs1))
			for i := range recs1 {
				assert.True(t, recs1[i].Equal(recs2[i]), "round %d diverged", i+1)
			}
			for _, r := range out1.Rounds() {
				requirePartition(t, first.Profile(), r)
			}
			assert.Len(t, out1.Elected(), 2)
		})
	}
}

func TestStochasticRequiresSeed(t *testing.T) {
	p := mustProfile(t, []ballot.Ballot{strict(1, "A", "B")})
	_, err := New(p, Config{Method: RandomDictator, Seats: 1})
	assert.ErrorIs(t, err, ErrNeedSeed)

	_, err = New(p, Config{Method: Plurality, Seats: 1, Tiebreak: tiebreak.Random})
	assert.ErrorIs(t, err, ErrNeedSeed)
}

func TestRewindReproducesHistory(t *testing.T) {
	ballots := []ballot.Ballot{
		strict(5, "A", "B", "C"),
		strict(4, "B", "C", "A"),
		strict(3, "C", "B", "A"),
	}

	e, err := New(mustProfile(t, ballots), Config{Method: PluralityVeto, Seats: 1, Seed: Seed(17)})
	require.NoError(t, err)
	out, err := e.Run()
	require.NoError(t, err)
	require.GreaterOrEqual(t, out.NumRounds(), 2)

	replay, err := e.Rewind(1)
	require.NoError(t, err)
	require.Len(t, replay.History(), 1)
	assert.True(t, replay.History()[0].Record().Equal(out.Records()[0]))

	for !replay.Done() {
		_, err := replay.Step()
		require.NoError(t, err)
	}
	got := replay.History()
	want := out.Rounds()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, got[i].Record().Equal(want[i].Record()), "round %d diverged", i+1)
	}

	_, err = e.Rewind(out.NumRounds() + 1)
	assert.ErrorIs(t, err, ErrBadConfig)
}

func TestRandomTransferConservesSurplus(t *testing.T) {
	// A's 9 first-preference ballots exceed quota 7; exactly 2 whole units
	// of weight must move on under random transfer.
	p := mustProfile(t, []ballot.Ballot{
		strict(3, "A", "B", "D", "C"),
		strict(3, "A", "C", "D", "B"),
		strict(3, "A", "D", "C", "B"),
		strict(2, "B", "C", "A", "D"),
		strict(1, "C", "B", "A", "D"),
		strict(1, "D", "C", "A", "B"),
	})

	e, err := New(p, Config{
		Method: STV, Seats: 1, Transfer: RandomTransfer, Seed: Seed(3),
	})
	require.NoError(t, err)
	require.Equal(t, 0, e.Quota().Cmp(big.NewRat(7, 1)))

	r1, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, r1.Elected())
	assert.True(t, e.Done())

	// Moved weight + retained quota + exhausted covers A's full tally.
	moved := new(big.Rat)
	for _, b := range e.stv.ballots {
		if !b.dead {
			moved.Add(moved, b.weight)
		}
	}
	total := new(big.Rat).Add(moved, e.stv.retained)
	total.Add(total, e.stv.exhausted)
	assert.Equal(t, 0, total.Cmp(p.TotalWeight()))
}

func TestConfigValidation(t *testing.T) {
	p := mustProfile(t, []ballot.Ballot{strict(1, "A", "B", "C")})

	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero seats", Config{Method: Plurality}, ErrBadSeats},
		{"too many seats", Config{Method: Plurality, Seats: 4}, ErrBadSeats},
		{"unknown method", Config{Method: "approval", Seats: 1}, ErrBadConfig},
		{"vector on plurality", Config{Method: Plurality, Seats: 1,
			ScoreVector: tally.Vector(1)}, ErrBadConfig},
		{"empty vector", Config{Method: CondorcetBorda, Seats: 1,
			ScoreVector: tally.ScoreVector{}}, tally.ErrBadScoreVector},
		{"empty vector on borda", Config{Method: Borda, Seats: 1,
			ScoreVector: tally.ScoreVector{}}, tally.ErrBadScoreVector},
		{"transfer on borda", Config{Method: Borda, Seats: 1,
			Transfer: FractionalTransfer}, ErrBadConfig},
		{"rating without limit", Config{Method: Rating, Seats: 1}, ErrBadConfig},
		{"limited point limit too big", Config{Method: Limited, Seats: 1,
			PointLimit: 4}, ErrBadConfig},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(p, tc.cfg)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	empty, err := profile.New(nil)
	require.NoError(t, err)
	_, err = New(empty, Config{Method: Plurality, Seats: 1})
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestRecordJSONRoundTrip(t *testing.T) {
	p := mustProfile(t, []ballot.Ballot{
		strict(3, "A", "B"),
		strict(1, "B", "A"),
	})
	e, err := New(p, Config{Method: Plurality, Seats: 1})
	require.NoError(t, err)
	out, err := e.Run()
	require.NoError(t, err)

	recs := out.Records()
	raw, err := json.Marshal(recs)
	require.NoError(t, err)
	var back []Record
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Len(t, back, len(recs))
	for i := range recs {
		assert.True(t, recs[i].Equal(back[i]))
	}
	assert.Equal(t, "3", recs[0].Scores["A"])
}

func TestOutcomeTable(t *testing.T) {
	p := mustProfile(t, []ballot.Ballot{
		strict(18, "A", "B", "C"),
		strict(12, "B", "A", "C"),
		strict(6, "C", "B", "A"),
	})
	e, err := New(p, Config{Method: Plurality, Seats: 1})
	require.NoError(t, err)
	out, err := e.Run()
	require.NoError(t, err)

	table := out.Table()
	assert.Contains(t, table, "CANDIDATE")
	assert.Contains(t, table, "Elected")
	assert.Contains(t, table, "Remaining")
	assert.Contains(t, table, "1 round(s)")
	assert.Equal(t, 1, out.RoundSettled("A"))
	assert.Equal(t, 0, out.RoundSettled("B"))
}
