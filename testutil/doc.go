// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package testutil provides shared test fixtures: ballot and profile
// builders that fail the test on invalid input, and a throwaway sqlite
// database path for store tests.
package testutil
