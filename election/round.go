// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"math/big"
)

// Round is one immutable snapshot of the election state machine. It is
// produced exactly once per transition and appended to the engine's
// append-only history; accessors return copies.
type Round struct {
	number          int
	remaining       []string // current-score order
	elected         []string // cumulative, settlement order
	eliminated      []string // cumulative, settlement order
	tiebreakSettled []string // candidates whose position this round owed to the tiebreak policy
	scores          map[string]*big.Rat
}

// Number is the 1-based round index.
func (r Round) Number() int { return r.number }

// Remaining lists not-yet-decided candidates in current-score order.
func (r Round) Remaining() []string { return append([]string(nil), r.remaining...) }

// Elected lists every candidate elected so far, in settlement order.
func (r Round) Elected() []string { return append([]string(nil), r.elected...) }

// Eliminated lists every candidate eliminated so far.
func (r Round) Eliminated() []string { return append([]string(nil), r.eliminated...) }

// TiebreakSettled lists the candidates whose position this round was decided
// by the tie-break policy rather than by score alone.
func (r Round) TiebreakSettled() []string {
	return append([]string(nil), r.tiebreakSettled...)
}

// Scores returns the per-candidate scores this round's decisions were based on.
func (r Round) Scores() map[string]*big.Rat {
	out := make(map[string]*big.Rat, len(r.scores))
	for c, s := range r.scores {
		out[c] = new(big.Rat).Set(s)
	}
	return out
}

// Record is the structured key/value serialization of a Round, suitable for
// persistence and replay comparison. Scores are rational strings ("3/2") so
// no precision is lost on the way to disk.
type Record struct {
	Number          int               `json:"number"`
	Remaining       []string          `json:"remaining"`
	Elected         []string          `json:"elected"`
	Eliminated      []string          `json:"eliminated"`
	TiebreakSettled []string          `json:"tiebreak_settled,omitempty"`
	Scores          map[string]string `json:"scores"`
}

// Record serializes the round.
func (r Round) Record() Record {
	rec := Record{
		Number:          r.number,
		Remaining:       r.Remaining(),
		Elected:         r.Elected(),
		Eliminated:      r.Eliminated(),
		TiebreakSettled: r.TiebreakSettled(),
		Scores:          make(map[string]string, len(r.scores)),
	}
	for c, s := range r.scores {
		rec.Scores[c] = s.RatString()
	}
	return rec
}

// Equal reports whether two records describe identical rounds. Used by
// replay verification.
func (rec Record) Equal(other Record) bool {
	if rec.Number != other.Number ||
		!equalStrings(rec.Remaining, other.Remaining) ||
		!equalStrings(rec.Elected, other.Elected) ||
		!equalStrings(rec.Eliminated, other.Eliminated) ||
		!equalStrings(rec.TiebreakSettled, other.TiebreakSettled) ||
		len(rec.Scores) != len(other.Scores) {
		return false
	}
	for c, s := range rec.Scores {
		if other.Scores[c] != s {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
