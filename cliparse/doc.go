// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-i              Input cast-vote-record CSV (required)
	-m              Election method (required)
	-s              Number of seats
	-tiebreak       Tiebreak policy (none, random, borda, first_place)
	-seed           Seed for stochastic draws
	-vector         Positional score vector, comma-separated integers
	-transfer       STV transfer rule (fractional or random)
	-rating-limit   Per-candidate score cap for the rating method
	-point-limit    Counting positions for limited voting
	-d              Database URL (optional; enables run persistence)
	-t              Database type (sqlite or postgres, default sqlite)

# Environment Variables

Flags fall back to environment variables:

	INPUT_CSV     → -i
	METHOD        → -m
	SEATS         → -s
	TIEBREAK      → -tiebreak
	SEED          → -seed
	SCORE_VECTOR  → -vector
	TRANSFER      → -transfer
	DATABASE_URL  → -d
	DATABASE_TYPE → -t

CLI flags take precedence over environment variables.

# Validation

ParseFlags rejects a missing input file or method and malformed numeric
values; the election package validates the full method/seats/seed
combination before round one.
*/
package cliparse
