// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package generator builds synthetic preference profiles from standard voter
models: impartial culture, impartial anonymous culture, Plackett-Luce,
Bradley-Terry, alternating crossover, and one-dimensional spatial.

Every model takes its randomness from an explicit *rand.Rand, so a seed
pins the generated profile exactly. Parameter structs are validated before
any draw; bloc proportions and preference intervals must each sum to one.
Generated unit ballots are condensed into a weighted profile over the full
roster.
*/
package generator
