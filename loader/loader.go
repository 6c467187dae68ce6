// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strings"

	"github.com/danielhkuo/tallykit/ballot"
	"github.com/danielhkuo/tallykit/profile"
)

var (
	ErrBadHeader = errors.New("csv header must start with a weight column")
	ErrBadWeight = errors.New("weight cell is not a rational number")
	ErrBadScore  = errors.New("score cell is not a rational number")
)

// Column layout: "weight", then "rank_1".."rank_k" cells holding one
// candidate or a tied set joined with "=", then optional "score_<cand>"
// columns. Empty cells are simply absent data.
const (
	weightColumn = "weight"
	rankPrefix   = "rank_"
	scorePrefix  = "score_"
	tieSeparator = "="
)

// ReadCSV parses cast-vote records into a profile. The roster is derived
// from the ballots; wrap with profile.WithCandidates upstream if a fixed
// roster is required.
func ReadCSV(r io.Reader) (*profile.Profile, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	if len(header) == 0 || header[0] != weightColumn {
		return nil, fmt.Errorf("%w: got %q", ErrBadHeader, header)
	}

	type column struct {
		rank  bool
		cand  string // score columns only
	}
	columns := make([]column, len(header))
	for i, name := range header[1:] {
		switch {
		case strings.HasPrefix(name, rankPrefix):
			columns[i+1] = column{rank: true}
		case strings.HasPrefix(name, scorePrefix):
			columns[i+1] = column{cand: strings.TrimPrefix(name, scorePrefix)}
		default:
			return nil, fmt.Errorf("%w: unknown column %q", ErrBadHeader, name)
		}
	}

	var ballots []ballot.Ballot
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}

		weight, ok := new(big.Rat).SetString(row[0])
		if !ok {
			return nil, fmt.Errorf("%w: line %d: %q", ErrBadWeight, line, row[0])
		}

		var positions []ballot.Position
		scores := make(map[string]*big.Rat)
		for i := 1; i < len(row); i++ {
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			if columns[i].rank {
				positions = append(positions, ballot.NewPosition(strings.Split(cell, tieSeparator)...))
				continue
			}
			s, ok := new(big.Rat).SetString(cell)
			if !ok {
				return nil, fmt.Errorf("%w: line %d: %q", ErrBadScore, line, cell)
			}
			scores[columns[i].cand] = s
		}

		opts := []ballot.Option{ballot.WithWeight(weight)}
		if len(positions) > 0 {
			opts = append(opts, ballot.WithRanking(positions...))
		}
		if len(scores) > 0 {
			opts = append(opts, ballot.WithScores(scores))
		}
		b, err := ballot.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		ballots = append(ballots, b)
	}

	return profile.New(ballots)
}

// WriteCSV renders the profile in the same layout ReadCSV accepts. Ranking
// columns are sized to the longest ballot; score columns cover every scored
// candidate, sorted.
func WriteCSV(w io.Writer, p *profile.Profile) error {
	maxRank := 0
	scored := make(map[string]bool)
	for _, b := range p.Ballots() {
		if n := len(b.Ranking()); n > maxRank {
			maxRank = n
		}
		for c := range b.Scores() {
			scored[c] = true
		}
	}
	scoreCands := make([]string, 0, len(scored))
	for c := range scored {
		scoreCands = append(scoreCands, c)
	}
	sort.Strings(scoreCands)

	header := []string{weightColumn}
	for i := 1; i <= maxRank; i++ {
		header = append(header, fmt.Sprintf("%s%d", rankPrefix, i))
	}
	for _, c := range scoreCands {
		header = append(header, scorePrefix+c)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, b := range p.Ballots() {
		row := make([]string, 0, len(header))
		row = append(row, b.Weight().RatString())
		ranking := b.Ranking()
		for i := 0; i < maxRank; i++ {
			if i < len(ranking) {
				row = append(row, strings.Join(ranking[i], tieSeparator))
			} else {
				row = append(row, "")
			}
		}
		scores := b.Scores()
		for _, c := range scoreCands {
			if s, ok := scores[c]; ok {
				row = append(row, s.RatString())
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadFile loads a profile from a CSV file on disk.
func ReadFile(path string) (*profile.Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteFile saves a profile as a CSV file on disk.
func WriteFile(path string, p *profile.Profile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteCSV(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
