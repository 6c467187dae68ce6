// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package profile defines the immutable preference profile: a candidate
roster plus an ordered sequence of weighted ballots.

# Roster rules

The roster may be supplied explicitly with WithCandidates, in which case
duplicates are rejected and every candidate mentioned by a positive-weight
ballot must be a member. When omitted, the roster is derived as the union
of all mentioned candidates. CandidatesCast reports the subset that
actually appears on some positive-weight ballot.

# Transformations

Profiles are never mutated. Condense, RemoveCands, AddMissingCands and
ResolveTies each return a new Profile, leaving the original intact for
reuse across experiments. Condensing an already-condensed profile returns
an equal profile, and every transformation conserves total weight exactly
(rational arithmetic, no floating point).
*/
package profile
