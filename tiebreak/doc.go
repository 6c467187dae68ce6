// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tiebreak turns a set of candidates with equal scores into a strict
total order, under a caller-selected policy.

Policies:

  - none: refuse. The engine only asks for resolution when a tie would
    change who is elected or eliminated, so under this policy such ties
    fail the run with ErrUnresolvedTie.
  - random: a uniform permutation drawn from the caller's *rand.Rand. The
    package never touches global randomness, which keeps seeded runs
    replayable bit for bit.
  - borda: Borda scores recomputed on the profile restricted to the tied
    set, recursing into any subgroup the restriction fails to separate.
  - first_place: the same recursion over first-preference tallies.

When borda or first_place bottoms out with candidates still inseparable, a
supplied random source breaks the remainder; without one the tie is
unresolvable.
*/
package tiebreak
