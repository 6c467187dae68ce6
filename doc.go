// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the tallykit command-line election runner.

Tallykit tallies ranked and score-based cast-vote records with exact
rational arithmetic and fully reproducible randomness.

# Running an Election

	tallykit -i votes.csv -m stv -s 3 -tiebreak borda -seed 42

Reads the cast-vote records, drops empty ballots, runs the election, and
prints a per-candidate table (Elected / Eliminated / Remaining with the
round each candidate was settled in).

# Persistence

With a database URL the finished run is saved for later replay
verification:

	tallykit -i votes.csv -m irv -d runs.db -t sqlite

# Architecture

  - ballot, profile: immutable cast-vote-record model
  - tally: first-place, positional, and score tallies
  - tiebreak: tie resolution policies
  - election: round-by-round engines for all supported methods
  - generator: synthetic voter models
  - cleaning, loader: profile preparation and CSV I/O
  - store: run persistence on sqlite or postgres
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
