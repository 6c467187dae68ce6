// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists finished election runs on database/sql.

# Schema

Two tables:

  - run: one row per saved run (method, seats, optional seed)
  - round_snapshot: one row per round, JSON record payload

round_snapshot references run with ON DELETE CASCADE.

# Drivers

Open selects the driver by database type: "sqlite" (modernc.org/sqlite,
pure Go) or "postgres" (lib/pq). Init creates the schema and is safe to
call repeatedly.

# Replay

LoadRun returns the stored round records in order. Re-running the same
profile, configuration, and seed must reproduce them bit for bit; comparing
with Record.Equal verifies a replay.
*/
package store
