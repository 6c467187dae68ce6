// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package cleaning prepares raw cast-vote records for tallying. Rules are
// small composable ballot transforms; Apply chains them over a profile and
// condenses the survivors into a new weighted profile.
package cleaning
