// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"fmt"

	"github.com/danielhkuo/tallykit/tally"
	"github.com/danielhkuo/tallykit/tiebreak"
)

var (
	ErrBadSeats     = errors.New("seats must satisfy 0 < m <= number of candidates")
	ErrBadConfig    = errors.New("invalid election configuration")
	ErrNeedSeed     = errors.New("stochastic configuration requires an explicit seed")
	ErrComplete     = errors.New("election already complete")
	ErrTiedRanking  = errors.New("method requires strict rankings; resolve ballot ties first")
	ErrNoCandidates = errors.New("profile has no candidates")
)

// Method identifies one of the supported election rules. The set is closed:
// every method shares the round-state and termination machinery and differs
// only in its per-round scoring, election, elimination, and transfer logic.
type Method string

const (
	Plurality             Method = "plurality"
	Borda                 Method = "borda"
	STV                   Method = "stv"
	IRV                   Method = "irv"
	CondorcetBorda        Method = "condorcet_borda"
	DominatingSets        Method = "dominating_sets"
	HighestScore          Method = "highest_score"
	Rating                Method = "rating"
	Cumulative            Method = "cumulative"
	Limited               Method = "limited"
	PluralityVeto         Method = "plurality_veto"
	RandomDictator        Method = "random_dictator"
	BoostedRandomDictator Method = "boosted_random_dictator"
)

// ParseMethod maps a config string to a Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case Plurality, Borda, STV, IRV, CondorcetBorda, DominatingSets,
		HighestScore, Rating, Cumulative, Limited,
		PluralityVeto, RandomDictator, BoostedRandomDictator:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown method %q", ErrBadConfig, s)
}

// TransferRule selects how STV redistributes surplus or eliminated weight.
type TransferRule string

const (
	// FractionalTransfer rescales every contributing ballot by surplus/tally
	// and advances it to its next available preference.
	FractionalTransfer TransferRule = "fractional"
	// RandomTransfer moves whole ballots, sampled without replacement from
	// the seeded source, until exactly the surplus weight has moved.
	RandomTransfer TransferRule = "random"
)

// Config parameterizes one engine run.
type Config struct {
	Method   Method
	Seats    int
	Tiebreak tiebreak.Policy

	// ScoreVector overrides the default positional vector for Borda and
	// Condorcet-Borda. Must be nonnegative and weakly decreasing.
	ScoreVector tally.ScoreVector

	// Transfer picks the STV transfer rule; defaults to FractionalTransfer.
	Transfer TransferRule

	// Seed drives every stochastic draw. Required by the stochastic method
	// family, the random tiebreak policy, and random transfer; never read
	// from global state, so equal seeds replay bit for bit.
	Seed *int64

	// RatingLimit bounds per-candidate scores for the Rating method.
	RatingLimit int64

	// PointLimit is the number of counting positions for Limited voting.
	PointLimit int
}

// Seed is a convenience for building Config literals.
func Seed(v int64) *int64 { return &v }

// stochastic reports whether the method itself draws randomness.
func (m Method) stochastic() bool {
	switch m {
	case PluralityVeto, RandomDictator, BoostedRandomDictator:
		return true
	}
	return false
}

// validate rejects unusable configurations before any round runs.
func (cfg *Config) validate(numCandidates int) error {
	if numCandidates == 0 {
		return ErrNoCandidates
	}
	if _, err := ParseMethod(string(cfg.Method)); err != nil {
		return err
	}

	if cfg.Method == IRV {
		if cfg.Seats == 0 {
			cfg.Seats = 1
		}
		if cfg.Seats != 1 {
			return fmt.Errorf("%w: irv is single-winner; use stv for %d seats", ErrBadConfig, cfg.Seats)
		}
	}
	if cfg.Seats <= 0 || cfg.Seats > numCandidates {
		return fmt.Errorf("%w: m=%d with %d candidates", ErrBadSeats, cfg.Seats, numCandidates)
	}

	if _, err := tiebreak.ParsePolicy(string(cfg.Tiebreak)); err != nil {
		return err
	}
	if cfg.Tiebreak == "" {
		cfg.Tiebreak = tiebreak.None
	}

	if cfg.ScoreVector != nil {
		switch cfg.Method {
		case Borda, CondorcetBorda:
			if err := cfg.ScoreVector.Validate(numCandidates); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: method %q does not take a score vector", ErrBadConfig, cfg.Method)
		}
	}

	switch cfg.Method {
	case STV, IRV:
		if cfg.Transfer == "" {
			cfg.Transfer = FractionalTransfer
		}
		if cfg.Transfer != FractionalTransfer && cfg.Transfer != RandomTransfer {
			return fmt.Errorf("%w: unknown transfer rule %q", ErrBadConfig, cfg.Transfer)
		}
	default:
		if cfg.Transfer != "" {
			return fmt.Errorf("%w: method %q does not transfer ballots", ErrBadConfig, cfg.Method)
		}
	}

	if cfg.Method == Rating && cfg.RatingLimit < 1 {
		return fmt.Errorf("%w: rating requires RatingLimit >= 1", ErrBadConfig)
	}
	if cfg.Method == Limited && (cfg.PointLimit < 1 || cfg.PointLimit > numCandidates) {
		return fmt.Errorf("%w: limited requires 1 <= PointLimit <= %d", ErrBadConfig, numCandidates)
	}

	needsSeed := cfg.Method.stochastic() ||
		cfg.Tiebreak == tiebreak.Random ||
		cfg.Transfer == RandomTransfer
	if needsSeed && cfg.Seed == nil {
		return fmt.Errorf("%w: method %q, tiebreak %q, transfer %q",
			ErrNeedSeed, cfg.Method, cfg.Tiebreak, cfg.Transfer)
	}
	return nil
}
