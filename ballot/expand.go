// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"math/big"
)

// ExpandTied expands a ballot whose ranking contains tied positions into the
// full set of strict-order sub-ballots, splitting the weight evenly among
// them. A ballot with k-way ties at positions of sizes k1..kj expands into
// k1!·k2!·…·kj! sub-ballots. Ballots without ties come back unchanged (as a
// one-element slice). Scores, if present, are carried onto every sub-ballot.
func ExpandTied(b Ballot) ([]Ballot, error) {
	if !b.HasRanking() {
		return nil, ErrNoRanking
	}
	if !b.HasTies() {
		return []Ballot{b}, nil
	}

	orders := [][]Position{{}}
	for _, pos := range b.ranking {
		perms := permutations(pos)
		next := make([][]Position, 0, len(orders)*len(perms))
		for _, prefix := range orders {
			for _, perm := range perms {
				order := make([]Position, 0, len(prefix)+len(perm))
				order = append(order, prefix...)
				for _, c := range perm {
					order = append(order, Position{c})
				}
				next = append(next, order)
			}
		}
		orders = next
	}

	share := new(big.Rat).Quo(b.Weight(), big.NewRat(int64(len(orders)), 1))
	out := make([]Ballot, 0, len(orders))
	for _, order := range orders {
		sub := Ballot{ranking: order, weight: new(big.Rat).Set(share)}
		if b.scores != nil {
			sub.scores = b.Scores()
		}
		out = append(out, sub)
	}
	return out, nil
}

// permutations returns every ordering of the candidates in pos.
func permutations(pos Position) [][]string {
	if len(pos) <= 1 {
		return [][]string{pos.clone()}
	}
	var out [][]string
	for i, c := range pos {
		rest := make(Position, 0, len(pos)-1)
		rest = append(rest, pos[:i]...)
		rest = append(rest, pos[i+1:]...)
		for _, tail := range permutations(rest) {
			perm := make([]string, 0, len(pos))
			perm = append(perm, c)
			perm = append(perm, tail...)
			out = append(out, perm)
		}
	}
	return out
}
