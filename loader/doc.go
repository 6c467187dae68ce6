// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package loader reads and writes cast-vote records as CSV. Weights and
// scores travel as rational strings ("3/2"), so a profile survives a
// round trip through disk without losing exactness.
package loader
