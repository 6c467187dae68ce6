package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/danielhkuo/tallykit/election"
	"github.com/danielhkuo/tallykit/tally"
	"github.com/danielhkuo/tallykit/tiebreak"
)

// Config is the fully parsed driver configuration: the input file, the
// election parameters, and the optional persistence target.
type Config struct {
	Input string

	Election election.Config

	DatabaseURL  string
	DatabaseType string
}

// ParseFlags reads flags with environment-variable fallback.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var (
		method      string
		tiebreakStr string
		seedStr     string
		vectorStr   string
		transfer    string
	)

	fs := flag.NewFlagSet("tallykit", flag.ContinueOnError)

	fs.StringVar(&cfg.Input, "i", "", "Input cast-vote-record CSV")
	fs.StringVar(&method, "m", "", "Election method (plurality, borda, stv, ...)")
	fs.IntVar(&cfg.Election.Seats, "s", 0, "Number of seats")
	fs.StringVar(&tiebreakStr, "tiebreak", "", "Tiebreak policy (none, random, borda, first_place)")
	fs.StringVar(&seedStr, "seed", "", "Seed for stochastic draws")
	fs.StringVar(&vectorStr, "vector", "", "Positional score vector, comma-separated integers")
	fs.StringVar(&transfer, "transfer", "", "STV transfer rule (fractional or random)")
	fs.Int64Var(&cfg.Election.RatingLimit, "rating-limit", 0, "Per-candidate score cap for rating")
	fs.IntVar(&cfg.Election.PointLimit, "point-limit", 0, "Counting positions for limited voting")

	// Persistence (can be CLI args or env)
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL (optional)")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Input == "" {
		cfg.Input = os.Getenv("INPUT_CSV")
	}
	if cfg.Input == "" {
		return Config{}, errors.New("input CSV required (use -i or INPUT_CSV env)")
	}

	if method == "" {
		method = os.Getenv("METHOD")
	}
	if method == "" {
		return Config{}, errors.New("method required (use -m or METHOD env)")
	}
	m, err := election.ParseMethod(method)
	if err != nil {
		return Config{}, err
	}
	cfg.Election.Method = m

	if cfg.Election.Seats == 0 {
		if s := os.Getenv("SEATS"); s != "" {
			seats, err := strconv.Atoi(s)
			if err != nil {
				return Config{}, errors.New("invalid SEATS env variable")
			}
			cfg.Election.Seats = seats
		}
	}

	if tiebreakStr == "" {
		tiebreakStr = os.Getenv("TIEBREAK")
	}
	policy, err := tiebreak.ParsePolicy(tiebreakStr)
	if err != nil {
		return Config{}, err
	}
	cfg.Election.Tiebreak = policy

	if seedStr == "" {
		seedStr = os.Getenv("SEED")
	}
	if seedStr != "" {
		seed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid seed %q", seedStr)
		}
		cfg.Election.Seed = &seed
	}

	if vectorStr == "" {
		vectorStr = os.Getenv("SCORE_VECTOR")
	}
	if vectorStr != "" {
		var points []int64
		for _, part := range strings.Split(vectorStr, ",") {
			p, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return Config{}, fmt.Errorf("invalid score vector entry %q", part)
			}
			points = append(points, p)
		}
		cfg.Election.ScoreVector = tally.Vector(points...)
	}

	if transfer == "" {
		transfer = os.Getenv("TRANSFER")
	}
	cfg.Election.Transfer = election.TransferRule(transfer)

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}

	return cfg, nil
}
