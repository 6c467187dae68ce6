// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/tallykit/ballot"
	"github.com/danielhkuo/tallykit/profile"
)

var (
	ErrNilRand   = errors.New("generator requires an explicit seeded rand source")
	ErrBadParams = errors.New("invalid generator parameters")

	validate = validator.New()
)

// maxEnumerated bounds the models that enumerate all n! rankings.
const maxEnumerated = 8

// Model produces a weighted profile of synthetic ballots. Every draw comes
// from the given source, so equal seeds produce equal profiles.
type Model interface {
	Generate(rng *rand.Rand) (*profile.Profile, error)
}

// Base carries the parameters every model shares.
type Base struct {
	Candidates []string `validate:"required,min=1,unique"`
	NumBallots int      `validate:"required,min=1"`
}

func (b Base) check(rng *rand.Rand) error {
	if rng == nil {
		return ErrNilRand
	}
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("%w: %v", ErrBadParams, err)
	}
	return nil
}

// pool condenses generated unit-weight ballots into a weighted profile over
// the full roster.
func (b Base) pool(ballots []ballot.Ballot) (*profile.Profile, error) {
	p, err := profile.New(ballots, profile.WithCandidates(b.Candidates...))
	if err != nil {
		return nil, err
	}
	return p.Condense()
}

func strictRanking(names []string) []ballot.Position {
	positions := make([]ballot.Position, len(names))
	for i, n := range names {
		positions[i] = ballot.NewPosition(n)
	}
	return positions
}

// ImpartialCulture draws every ballot as a uniformly random strict ranking
// of the full roster.
type ImpartialCulture struct {
	Base
}

func (m ImpartialCulture) Generate(rng *rand.Rand) (*profile.Profile, error) {
	if err := m.check(rng); err != nil {
		return nil, err
	}
	ballots := make([]ballot.Ballot, 0, m.NumBallots)
	for i := 0; i < m.NumBallots; i++ {
		names := make([]string, len(m.Candidates))
		for j, k := range rng.Perm(len(m.Candidates)) {
			names[j] = m.Candidates[k]
		}
		b, err := ballot.New(ballot.WithRanking(strictRanking(names)...))
		if err != nil {
			return nil, err
		}
		ballots = append(ballots, b)
	}
	return m.pool(ballots)
}

// ImpartialAnonymousCulture first draws a probability for every possible
// strict ranking from a uniform Dirichlet (normalized unit exponentials),
// then draws each ballot from that distribution. Enumerates all n! rankings,
// so the roster is capped at 8.
type ImpartialAnonymousCulture struct {
	Base
}

func (m ImpartialAnonymousCulture) Generate(rng *rand.Rand) (*profile.Profile, error) {
	if err := m.check(rng); err != nil {
		return nil, err
	}
	if len(m.Candidates) > maxEnumerated {
		return nil, fmt.Errorf("%w: %d candidates exceed the %d-candidate enumeration cap",
			ErrBadParams, len(m.Candidates), maxEnumerated)
	}

	perms := permutations(m.Candidates)
	probs := make([]float64, len(perms))
	total := 0.0
	for i := range probs {
		probs[i] = rng.ExpFloat64()
		total += probs[i]
	}
	for i := range probs {
		probs[i] /= total
	}

	ballots := make([]ballot.Ballot, 0, m.NumBallots)
	for i := 0; i < m.NumBallots; i++ {
		names := perms[drawIndex(rng, probs)]
		b, err := ballot.New(ballot.WithRanking(strictRanking(names)...))
		if err != nil {
			return nil, err
		}
		ballots = append(ballots, b)
	}
	return m.pool(ballots)
}

// Bloc is one voting bloc: its share of the electorate and its preference
// interval over the candidates. Interval values are relative support and
// must sum to one; zero-support candidates go unranked by the bloc.
type Bloc struct {
	Proportion float64            `validate:"gte=0,lte=1"`
	Interval   map[string]float64 `validate:"required,min=1"`
}

// checkBlocs validates bloc proportions and intervals against the roster.
func checkBlocs(blocs map[string]Bloc, roster []string) error {
	if len(blocs) == 0 {
		return fmt.Errorf("%w: at least one bloc required", ErrBadParams)
	}
	onRoster := make(map[string]bool, len(roster))
	for _, c := range roster {
		onRoster[c] = true
	}

	propSum := 0.0
	for name, bloc := range blocs {
		if err := validate.Struct(bloc); err != nil {
			return fmt.Errorf("%w: bloc %q: %v", ErrBadParams, name, err)
		}
		propSum += bloc.Proportion

		intervalSum := 0.0
		for c, support := range bloc.Interval {
			if !onRoster[c] {
				return fmt.Errorf("%w: bloc %q scores unknown candidate %q", ErrBadParams, name, c)
			}
			if support < 0 {
				return fmt.Errorf("%w: bloc %q gives %q negative support", ErrBadParams, name, c)
			}
			intervalSum += support
		}
		if math.Abs(intervalSum-1) > 1e-9 {
			return fmt.Errorf("%w: bloc %q interval sums to %g, want 1", ErrBadParams, name, intervalSum)
		}
	}
	if math.Abs(propSum-1) > 1e-9 {
		return fmt.Errorf("%w: bloc proportions sum to %g, want 1", ErrBadParams, propSum)
	}
	return nil
}

// blocNames gives a fixed iteration order so draws are reproducible.
func blocNames(blocs map[string]Bloc) []string {
	names := make([]string, 0, len(blocs))
	for n := range blocs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func drawBloc(rng *rand.Rand, names []string, blocs map[string]Bloc) Bloc {
	r := rng.Float64()
	acc := 0.0
	for _, n := range names {
		acc += blocs[n].Proportion
		if r < acc {
			return blocs[n]
		}
	}
	return blocs[names[len(names)-1]]
}

// positiveSupport extracts the bloc's supported candidates in sorted order
// with their weights.
func positiveSupport(interval map[string]float64) ([]string, []float64) {
	cands := make([]string, 0, len(interval))
	for c, s := range interval {
		if s > 0 {
			cands = append(cands, c)
		}
	}
	sort.Strings(cands)
	weights := make([]float64, len(cands))
	for i, c := range cands {
		weights[i] = interval[c]
	}
	return cands, weights
}

// PlackettLuce draws each ballot by sampling candidates without replacement,
// each draw proportional to the voter's bloc interval.
type PlackettLuce struct {
	Base
	Blocs map[string]Bloc
}

func (m PlackettLuce) Generate(rng *rand.Rand) (*profile.Profile, error) {
	if err := m.check(rng); err != nil {
		return nil, err
	}
	if err := checkBlocs(m.Blocs, m.Candidates); err != nil {
		return nil, err
	}

	names := blocNames(m.Blocs)
	ballots := make([]ballot.Ballot, 0, m.NumBallots)
	for i := 0; i < m.NumBallots; i++ {
		bloc := drawBloc(rng, names, m.Blocs)
		cands, weights := positiveSupport(bloc.Interval)
		ranked := plackettLuceDraw(rng, cands, weights)
		b, err := ballot.New(ballot.WithRanking(strictRanking(ranked)...))
		if err != nil {
			return nil, err
		}
		ballots = append(ballots, b)
	}
	return m.pool(ballots)
}

func plackettLuceDraw(rng *rand.Rand, cands []string, weights []float64) []string {
	cands = append([]string(nil), cands...)
	weights = append([]float64(nil), weights...)
	out := make([]string, 0, len(cands))
	for len(cands) > 0 {
		total := 0.0
		for _, w := range weights {
			total += w
		}
		r := rng.Float64() * total
		acc := 0.0
		pick := len(cands) - 1
		for i, w := range weights {
			acc += w
			if r < acc {
				pick = i
				break
			}
		}
		out = append(out, cands[pick])
		cands = append(cands[:pick], cands[pick+1:]...)
		weights = append(weights[:pick], weights[pick+1:]...)
	}
	return out
}

// BradleyTerry draws each ballot proportionally to the product of pairwise
// win probabilities under the voter's bloc interval. Enumerates the bloc's
// supported rankings, so supported candidates are capped at 8 per bloc.
type BradleyTerry struct {
	Base
	Blocs map[string]Bloc
}

func (m BradleyTerry) Generate(rng *rand.Rand) (*profile.Profile, error) {
	if err := m.check(rng); err != nil {
		return nil, err
	}
	if err := checkBlocs(m.Blocs, m.Candidates); err != nil {
		return nil, err
	}

	names := blocNames(m.Blocs)

	// Per-bloc ranking distributions, computed once.
	type dist struct {
		perms [][]string
		probs []float64
	}
	dists := make(map[string]dist, len(m.Blocs))
	for _, n := range names {
		cands, _ := positiveSupport(m.Blocs[n].Interval)
		if len(cands) > maxEnumerated {
			return nil, fmt.Errorf("%w: bloc %q supports %d candidates, enumeration cap is %d",
				ErrBadParams, n, len(cands), maxEnumerated)
		}
		perms := permutations(cands)
		probs := make([]float64, len(perms))
		total := 0.0
		for i, perm := range perms {
			p := 1.0
			for a := 0; a < len(perm); a++ {
				for b := a + 1; b < len(perm); b++ {
					wa := m.Blocs[n].Interval[perm[a]]
					wb := m.Blocs[n].Interval[perm[b]]
					p *= wa / (wa + wb)
				}
			}
			probs[i] = p
			total += p
		}
		for i := range probs {
			probs[i] /= total
		}
		dists[n] = dist{perms: perms, probs: probs}
	}

	ballots := make([]ballot.Ballot, 0, m.NumBallots)
	for i := 0; i < m.NumBallots; i++ {
		r := rng.Float64()
		acc := 0.0
		blocName := names[len(names)-1]
		for _, n := range names {
			acc += m.Blocs[n].Proportion
			if r < acc {
				blocName = n
				break
			}
		}
		d := dists[blocName]
		ranked := d.perms[drawIndex(rng, d.probs)]
		b, err := ballot.New(ballot.WithRanking(strictRanking(ranked)...))
		if err != nil {
			return nil, err
		}
		ballots = append(ballots, b)
	}
	return m.pool(ballots)
}

// ACBloc parameterizes one side of an alternating-crossover electorate.
type ACBloc struct {
	Proportion float64  `validate:"gte=0,lte=1"`
	Crossover  float64  `validate:"gte=0,lte=1"`
	Slate      []string `validate:"required,min=1,unique"`
}

// AlternatingCrossover models a two-bloc electorate. A loyal voter ranks
// their whole slate (shuffled) above the other slate (shuffled); a crossover
// voter alternates, starting with the other bloc's slate.
type AlternatingCrossover struct {
	Base
	Blocs map[string]ACBloc `validate:"required,len=2"`
}

func (m AlternatingCrossover) Generate(rng *rand.Rand) (*profile.Profile, error) {
	if err := m.check(rng); err != nil {
		return nil, err
	}
	if err := validate.Struct(m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadParams, err)
	}

	names := make([]string, 0, 2)
	for n := range m.Blocs {
		names = append(names, n)
	}
	sort.Strings(names)

	propSum := 0.0
	covered := make(map[string]bool)
	for _, n := range names {
		bloc := m.Blocs[n]
		if err := validate.Struct(bloc); err != nil {
			return nil, fmt.Errorf("%w: bloc %q: %v", ErrBadParams, n, err)
		}
		propSum += bloc.Proportion
		for _, c := range bloc.Slate {
			if covered[c] {
				return nil, fmt.Errorf("%w: candidate %q on both slates", ErrBadParams, c)
			}
			covered[c] = true
		}
	}
	if math.Abs(propSum-1) > 1e-9 {
		return nil, fmt.Errorf("%w: bloc proportions sum to %g, want 1", ErrBadParams, propSum)
	}
	for _, c := range m.Candidates {
		if !covered[c] {
			return nil, fmt.Errorf("%w: candidate %q on neither slate", ErrBadParams, c)
		}
	}
	if len(covered) != len(m.Candidates) {
		return nil, fmt.Errorf("%w: slates name candidates outside the roster", ErrBadParams)
	}

	shuffled := func(slate []string) []string {
		out := append([]string(nil), slate...)
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}

	ballots := make([]ballot.Ballot, 0, m.NumBallots)
	for i := 0; i < m.NumBallots; i++ {
		ownName := names[0]
		if rng.Float64() >= m.Blocs[names[0]].Proportion {
			ownName = names[1]
		}
		otherName := names[0]
		if ownName == names[0] {
			otherName = names[1]
		}

		own := shuffled(m.Blocs[ownName].Slate)
		other := shuffled(m.Blocs[otherName].Slate)

		var ranked []string
		if rng.Float64() < m.Blocs[ownName].Crossover {
			ranked = interleave(other, own)
		} else {
			ranked = append(append([]string{}, own...), other...)
		}
		b, err := ballot.New(ballot.WithRanking(strictRanking(ranked)...))
		if err != nil {
			return nil, err
		}
		ballots = append(ballots, b)
	}
	return m.pool(ballots)
}

// interleave alternates a, b, a, b, …, appending whatever is left of the
// longer slice.
func interleave(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	for i := 0; i < len(a) || i < len(b); i++ {
		if i < len(a) {
			out = append(out, a[i])
		}
		if i < len(b) {
			out = append(out, b[i])
		}
	}
	return out
}

// OneDimSpatial places candidates and voters on a line by normal draws and
// ranks candidates by distance, nearest first.
type OneDimSpatial struct {
	Base
	// Standard deviations of the candidate and voter position draws; zero
	// means 1.
	CandidateSD float64 `validate:"gte=0"`
	VoterSD     float64 `validate:"gte=0"`
}

func (m OneDimSpatial) Generate(rng *rand.Rand) (*profile.Profile, error) {
	if err := m.check(rng); err != nil {
		return nil, err
	}
	candSD, voterSD := m.CandidateSD, m.VoterSD
	if candSD == 0 {
		candSD = 1
	}
	if voterSD == 0 {
		voterSD = 1
	}

	positions := make(map[string]float64, len(m.Candidates))
	for _, c := range m.Candidates {
		positions[c] = rng.NormFloat64() * candSD
	}

	ballots := make([]ballot.Ballot, 0, m.NumBallots)
	for i := 0; i < m.NumBallots; i++ {
		v := rng.NormFloat64() * voterSD
		ranked := append([]string(nil), m.Candidates...)
		sort.Slice(ranked, func(a, b int) bool {
			da := math.Abs(positions[ranked[a]] - v)
			db := math.Abs(positions[ranked[b]] - v)
			if da != db {
				return da < db
			}
			return ranked[a] < ranked[b]
		})
		b, err := ballot.New(ballot.WithRanking(strictRanking(ranked)...))
		if err != nil {
			return nil, err
		}
		ballots = append(ballots, b)
	}
	return m.pool(ballots)
}

// drawIndex picks an index from a normalized probability vector.
func drawIndex(rng *rand.Rand, probs []float64) int {
	r := rng.Float64()
	acc := 0.0
	for i, p := range probs {
		acc += p
		if r < acc {
			return i
		}
	}
	return len(probs) - 1
}

// permutations enumerates every ordering of the given names.
func permutations(names []string) [][]string {
	if len(names) == 0 {
		return [][]string{{}}
	}
	var out [][]string
	for i, n := range names {
		rest := make([]string, 0, len(names)-1)
		rest = append(rest, names[:i]...)
		rest = append(rest, names[i+1:]...)
		for _, perm := range permutations(rest) {
			out = append(out, append([]string{n}, perm...))
		}
	}
	return out
}
