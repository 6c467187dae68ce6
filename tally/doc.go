// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally provides the pure scoring primitives shared by every election
method: first-preference tallies, positional (Borda) scores, native ballot
score sums, mention counts, and the score-to-ranking grouping used when
ordering candidates.

All arithmetic is exact (math/big rationals). Functions never mutate the
profile they read.

# Tied positions

Two conventions needed pinning down:

  - FirstPlace splits a ballot's weight 1/j among the j remaining
    candidates tied at its top available position.
  - Borda walks rank slots one per candidate, so a k-way tie spans k slots
    and each tied candidate gets the span's average points; candidates the
    ballot does not rank split the leftover slots' points evenly.

The default Borda vector for n candidates is (n-1, n-2, …, 0).
*/
package tally
