// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/tallykit/profile"
)

// Outcome is the finished election: the full round history plus the final
// three-way partition read off the last round.
type Outcome struct {
	profile *profile.Profile
	method  Method
	seats   int
	rounds  []Round
}

// outcome snapshots a completed engine.
func (e *Engine) outcome() *Outcome {
	return &Outcome{
		profile: e.profile,
		method:  e.cfg.Method,
		seats:   e.cfg.Seats,
		rounds:  append([]Round(nil), e.rounds...),
	}
}

// Method returns the rule that produced this outcome.
func (o *Outcome) Method() Method { return o.method }

// Seats returns the number of seats contested.
func (o *Outcome) Seats() int { return o.seats }

// Profile returns the input profile.
func (o *Outcome) Profile() *profile.Profile { return o.profile }

// Rounds returns a copy of the round history.
func (o *Outcome) Rounds() []Round { return append([]Round(nil), o.rounds...) }

// NumRounds is the number of rounds the election took.
func (o *Outcome) NumRounds() int { return len(o.rounds) }

func (o *Outcome) last() Round { return o.rounds[len(o.rounds)-1] }

// Elected lists the winners in settlement order.
func (o *Outcome) Elected() []string { return o.last().Elected() }

// Eliminated lists eliminated candidates in settlement order.
func (o *Outcome) Eliminated() []string { return o.last().Eliminated() }

// Remaining lists candidates who were neither elected nor eliminated.
func (o *Outcome) Remaining() []string { return o.last().Remaining() }

// Records serializes every round for persistence.
func (o *Outcome) Records() []Record {
	out := make([]Record, len(o.rounds))
	for i, r := range o.rounds {
		out[i] = r.Record()
	}
	return out
}

// RoundSettled returns the 1-based round in which the candidate was elected
// or eliminated, or 0 if they finished Remaining or are unknown.
func (o *Outcome) RoundSettled(cand string) int {
	decidedBefore := func(r Round, c string) bool {
		for _, x := range r.elected {
			if x == c {
				return true
			}
		}
		for _, x := range r.eliminated {
			if x == c {
				return true
			}
		}
		return false
	}
	for _, r := range o.rounds {
		if decidedBefore(r, cand) {
			return r.number
		}
	}
	return 0
}

// Table renders the outcome as an aligned plain-text summary, one candidate
// per row with their final status and the round that settled it.
func (o *Outcome) Table() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s, %d seat(s), %s ballots of total weight %s\n\n",
		o.method, o.seats,
		humanize.Comma(int64(o.profile.NumBallots())),
		o.profile.TotalWeight().RatString())

	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CANDIDATE\tSTATUS\tROUND")
	for _, c := range o.Elected() {
		fmt.Fprintf(w, "%s\tElected\t%d\n", c, o.RoundSettled(c))
	}
	for _, c := range o.Eliminated() {
		fmt.Fprintf(w, "%s\tEliminated\t%d\n", c, o.RoundSettled(c))
	}
	for _, c := range o.Remaining() {
		fmt.Fprintf(w, "%s\tRemaining\t-\n", c)
	}
	w.Flush()

	fmt.Fprintf(&sb, "\n%d round(s)\n", len(o.rounds))
	return sb.String()
}
