package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/tallykit/cleaning"
	"github.com/danielhkuo/tallykit/cliparse"
	"github.com/danielhkuo/tallykit/election"
	"github.com/danielhkuo/tallykit/loader"
	"github.com/danielhkuo/tallykit/store"
)

func main() {
	// Optional .env for local runs; missing file is fine
	_ = godotenv.Load()

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	raw, err := loader.ReadFile(cfg.Input)
	if err != nil {
		slog.Error("loading cast-vote records failed", "error", err, "input", cfg.Input)
		os.Exit(1)
	}

	profile, err := cleaning.RemoveEmptyBallots(raw)
	if err != nil {
		slog.Error("cleaning profile failed", "error", err)
		os.Exit(1)
	}
	slog.Info("profile loaded",
		"input", cfg.Input,
		"ballots", profile.NumBallots(),
		"candidates", profile.NumCandidates(),
		"total_weight", profile.TotalWeight().RatString())

	engine, err := election.New(profile, cfg.Election)
	if err != nil {
		slog.Error("engine construction failed", "error", err)
		os.Exit(1)
	}
	outcome, err := engine.Run()
	if err != nil {
		// A mid-run unresolved tie leaves the resolved rounds inspectable.
		slog.Error("election run failed", "error", err, "rounds_completed", len(engine.History()))
		os.Exit(1)
	}

	fmt.Print(outcome.Table())

	if cfg.DatabaseURL == "" {
		return
	}
	s, err := store.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	if err := s.Init(); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	runID, err := s.SaveRun(outcome, cfg.Election.Seed)
	if err != nil {
		slog.Error("saving run failed", "error", err)
		os.Exit(1)
	}
	slog.Info("run persisted", "run_id", runID)
}
