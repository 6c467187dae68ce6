// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/danielhkuo/tallykit/ballot"
	"github.com/danielhkuo/tallykit/profile"
)

// Ranked builds a strict-ranking ballot, one candidate per position.
func Ranked(t *testing.T, weight int64, names ...string) ballot.Ballot {
	t.Helper()
	positions := make([]ballot.Position, len(names))
	for i, n := range names {
		positions[i] = ballot.NewPosition(n)
	}
	b, err := ballot.New(ballot.WithWeightInt(weight), ballot.WithRanking(positions...))
	if err != nil {
		t.Fatalf("building ballot: %v", err)
	}
	return b
}

// Scored builds a ranking-free ballot from integer scores.
func Scored(t *testing.T, weight int64, scores map[string]int64) ballot.Ballot {
	t.Helper()
	m := make(map[string]*big.Rat, len(scores))
	for c, v := range scores {
		m[c] = big.NewRat(v, 1)
	}
	b, err := ballot.New(ballot.WithWeightInt(weight), ballot.WithScores(m))
	if err != nil {
		t.Fatalf("building ballot: %v", err)
	}
	return b
}

// Profile wraps profile.New with test failure on error.
func Profile(t *testing.T, ballots []ballot.Ballot, opts ...profile.Option) *profile.Profile {
	t.Helper()
	p, err := profile.New(ballots, opts...)
	if err != nil {
		t.Fatalf("building profile: %v", err)
	}
	return p
}

// SQLiteDSN returns a connection string for a fresh on-disk sqlite database
// that lives in the test's temporary directory.
func SQLiteDSN(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "tallykit_test.db")
}
