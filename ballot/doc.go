// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ballot defines the immutable single-voter record consumed by the
election engine.

# Shape

A Ballot carries up to three things:

  - Ranking: ordered positions, each a set of candidates. A position with
    more than one candidate is a tie at that rank. A candidate may appear
    in at most one position.
  - Scores: a map from candidate to a nonnegative exact rational. Scores
    and ranking are independent; a ballot may carry both, either, or
    neither, and no cross-validation is performed between them.
  - Weight: an exact nonnegative rational, defaulting to 1. Weighted
    ballots stand in for groups of voters who cast identical ballots.

All weights and scores use math/big rationals so that multi-round transfer
arithmetic stays exact; nothing in this module compares vote weights with a
floating-point tolerance.

# Immutability

Ballots are values. Construction validates eagerly and fails rather than
producing a partially valid ballot; accessors return copies; every
transformation (RemoveCands, WithNewWeight, ExpandTied) returns new
ballots and leaves the receiver intact.

# Construction

	b, err := ballot.New(
		ballot.WithRanking(ballot.NewPosition("A"), ballot.NewPosition("B", "C")),
		ballot.WithWeightInt(3),
	)

ranks A first and ties B and C for second, with weight 3.
*/
package ballot
