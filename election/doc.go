// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package election runs ranked and score-based elections as deterministic
// round-by-round state machines.
//
// An Engine pairs one immutable preference profile with one Config and steps
// through rounds until every seat is filled or every candidate is decided.
// Each round partitions the candidates into Elected, Eliminated, and
// Remaining, and records the per-candidate scores the decision was based on.
// All arithmetic is exact (math/big rationals) and all randomness flows from
// the caller's explicit seed, so any run can be replayed bit for bit with
// Rewind or a fresh engine under the same seed.
//
// Supported methods: plurality, Borda, STV and IRV with fractional or random
// surplus transfer, Condorcet-Borda, dominating sets, highest-score, rating,
// cumulative, limited, plurality-veto, random dictator, and boosted random
// dictator.
package election
