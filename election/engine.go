// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"fmt"
	"math/big"
	"math/rand"
	"sort"

	"github.com/danielhkuo/tallykit/profile"
	"github.com/danielhkuo/tallykit/tally"
	"github.com/danielhkuo/tallykit/tiebreak"
)

// Engine runs one (profile, config) pair to completion, emitting one Round
// per transition. The profile is never mutated; the engine owns its mutable
// working state exclusively and publishes results only as immutable Rounds.
type Engine struct {
	profile *profile.Profile
	cfg     Config
	rng     *rand.Rand

	rounds     []Round
	elected    []string
	eliminated []string
	remaining  []string
	done       bool

	stv *stvState
}

// New validates the configuration and builds an engine. Configuration
// errors surface here, before any round runs, so a failed construction
// never leaves a partial round history behind.
func New(p *profile.Profile, cfg Config) (*Engine, error) {
	if err := cfg.validate(p.NumCandidates()); err != nil {
		return nil, err
	}

	e := &Engine{profile: p, cfg: cfg, remaining: p.Candidates()}
	if cfg.Seed != nil {
		e.rng = rand.New(rand.NewSource(*cfg.Seed))
	}

	if cfg.Method == STV || cfg.Method == IRV {
		st, err := newSTVState(p, cfg.Seats)
		if err != nil {
			return nil, err
		}
		e.stv = st
	}
	if cfg.Method == Rating {
		if err := checkRatingLimit(p, cfg.RatingLimit); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Profile returns the engine's immutable input profile.
func (e *Engine) Profile() *profile.Profile { return e.profile }

// Done reports whether the state machine has reached its terminal state.
func (e *Engine) Done() bool { return e.done }

// History returns a copy of the append-only round history.
func (e *Engine) History() []Round { return append([]Round(nil), e.rounds...) }

// Step runs one round transition. On an unresolved outcome-affecting tie it
// returns tiebreak.ErrUnresolvedTie and appends nothing: the history up to
// the last fully resolved round stays valid and inspectable.
func (e *Engine) Step() (Round, error) {
	if e.done {
		return Round{}, ErrComplete
	}

	var (
		res stepResult
		err error
	)
	switch e.cfg.Method {
	case Plurality:
		res, err = e.stepPlurality()
	case Borda:
		res, err = e.stepBorda()
	case CondorcetBorda:
		res, err = e.stepCondorcetBorda()
	case HighestScore, Rating:
		res, err = e.stepBallotScores()
	case Cumulative:
		res, err = e.stepCumulative()
	case Limited:
		res, err = e.stepLimited()
	case DominatingSets:
		res, err = e.stepDominating()
	case STV, IRV:
		res, err = e.stepSTV()
	case PluralityVeto:
		res, err = e.stepPluralityVeto()
	case RandomDictator:
		res, err = e.stepDictator(false)
	case BoostedRandomDictator:
		res, err = e.stepDictator(true)
	default:
		err = fmt.Errorf("%w: unknown method %q", ErrBadConfig, e.cfg.Method)
	}
	if err != nil {
		return Round{}, err
	}
	return e.commit(res), nil
}

// Run steps the engine to completion and reads off the final partition.
func (e *Engine) Run() (*Outcome, error) {
	for !e.done {
		if _, err := e.Step(); err != nil {
			return nil, err
		}
	}
	return e.outcome(), nil
}

// Rewind returns a fresh engine replayed to round n (0 <= n <= rounds so
// far). Because every round depends only on the immutable profile, the
// previous round, and the seeded source, the returned engine reproduces the
// original rounds bit for bit and continues identically.
func (e *Engine) Rewind(n int) (*Engine, error) {
	if n < 0 || n > len(e.rounds) {
		return nil, fmt.Errorf("%w: cannot rewind to round %d of %d", ErrBadConfig, n, len(e.rounds))
	}
	replay, err := New(e.profile, e.cfg)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if _, err := replay.Step(); err != nil {
			return nil, err
		}
	}
	return replay, nil
}

// stepResult is what a method's round logic hands back to the shared
// round-state machinery.
type stepResult struct {
	scores          map[string]*big.Rat
	newlyElected    []string // settlement order
	newlyEliminated []string
	tiebreakSettled []string
	terminal        bool // single-round methods force completion
}

// commit folds a step result into the partition, appends the immutable
// Round, and applies the termination check shared by every method.
func (e *Engine) commit(res stepResult) Round {
	e.elected = append(e.elected, res.newlyElected...)
	e.eliminated = append(e.eliminated, res.newlyEliminated...)

	decided := make(map[string]bool, len(e.elected)+len(e.eliminated))
	for _, c := range e.elected {
		decided[c] = true
	}
	for _, c := range e.eliminated {
		decided[c] = true
	}

	var remaining []string
	for _, pos := range tally.RankingFromScores(res.scores) {
		for _, c := range pos {
			if !decided[c] {
				remaining = append(remaining, c)
			}
		}
	}
	// Candidates absent from this round's scores keep roster order at the end.
	inScores := make(map[string]bool, len(res.scores))
	for c := range res.scores {
		inScores[c] = true
	}
	for _, c := range e.profile.Candidates() {
		if !decided[c] && !inScores[c] {
			remaining = append(remaining, c)
		}
	}
	e.remaining = remaining

	r := Round{
		number:          len(e.rounds) + 1,
		remaining:       append([]string(nil), remaining...),
		elected:         append([]string(nil), e.elected...),
		eliminated:      append([]string(nil), e.eliminated...),
		tiebreakSettled: append([]string(nil), res.tiebreakSettled...),
		scores:          res.scores,
	}
	e.rounds = append(e.rounds, r)

	if res.terminal ||
		len(e.elected) >= e.cfg.Seats ||
		len(e.elected)+len(e.eliminated) == e.profile.NumCandidates() {
		e.done = true
	}
	return r
}

// openSeats is the number of seats still unfilled.
func (e *Engine) openSeats() int { return e.cfg.Seats - len(e.elected) }

// electTop elects the highest-scoring candidates into the open seats,
// resolving the boundary group with the configured tiebreak policy when the
// seat line cuts through a tie. It returns the elected candidates in
// settlement order plus the set whose position the tiebreak decided.
func (e *Engine) electTop(scores map[string]*big.Rat, seats int) (elected, settled []string, err error) {
	for _, group := range tally.RankingFromScores(scores) {
		if len(elected) == seats {
			break
		}
		if len(elected)+len(group) <= seats {
			// The whole group is in: its internal order cannot change the
			// outcome, so no resolution is required.
			elected = append(elected, group...)
			continue
		}
		need := seats - len(elected)
		order, rerr := tiebreak.Resolve(group, e.cfg.Tiebreak, e.profile, e.rng)
		if rerr != nil {
			return nil, nil, rerr
		}
		elected = append(elected, order[:need]...)
		settled = append(settled, group...)
		sort.Strings(settled)
		break
	}
	return elected, settled, nil
}

// fillScores guarantees every listed candidate has an entry, adding zeros.
func fillScores(scores map[string]*big.Rat, cands []string) map[string]*big.Rat {
	for _, c := range cands {
		if scores[c] == nil {
			scores[c] = new(big.Rat)
		}
	}
	return scores
}
