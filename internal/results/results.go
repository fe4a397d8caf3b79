// internal/results/results.go
//
// Aggregates per-game result files into campaign metrics. The game host
// writes one JSON file per finished game containing a player_results
// mapping; this package answers "how is my agent doing" across a directory
// of them.

package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// GameMetrics summarizes one player's record across a set of games.
type GameMetrics struct {
	TotalGames       int
	Wins             int
	Losses           int
	ResponseFailures int
	SurvivalRate     float64
	WinRate          float64
	FailureRate      float64
}

// Summary renders the metrics as a human-readable report.
func (m GameMetrics) Summary() string {
	return fmt.Sprintf(`Results over %d games:
Win Rate: %.2f%%
Survival Rate: %.2f%%
Response Failure Rate: %.2f%%
Total Wins: %d
Total Losses: %d
Total Response Failures: %d`,
		m.TotalGames,
		m.WinRate*100,
		m.SurvivalRate*100,
		m.FailureRate*100,
		m.Wins,
		m.Losses,
		m.ResponseFailures,
	)
}

type playerResult struct {
	Won              bool `json:"won"`
	Survived         bool `json:"survived"`
	ResponseFailures int  `json:"response_failures"`
}

type gameResult struct {
	PlayerResults map[string]playerResult `json:"player_results"`
}

// Logger records collector diagnostics. It matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Collector reads result files from disk.
type Collector struct {
	logger Logger
}

// Option customizes Collector construction.
type Option func(*Collector)

// WithLogger injects a logger for skipped-file warnings.
func WithLogger(logger Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCollector builds a collector.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{logger: nopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// FromDir loads every *.json file under dir and aggregates metrics for
// playerName. Files that cannot be read or parsed are skipped with a
// warning; a game the player did not appear in still counts toward the
// total, matching the host's scoring.
func (c *Collector) FromDir(dir, playerName string) (GameMetrics, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return GameMetrics{}, fmt.Errorf("results: scan %s: %w", dir, err)
	}

	var games []gameResult
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			c.logger.Printf("results: skipping %s: %v", path, err)
			continue
		}
		var game gameResult
		if err := json.Unmarshal(data, &game); err != nil {
			c.logger.Printf("results: could not parse %s: %v", path, err)
			continue
		}
		games = append(games, game)
	}

	return calculate(games, playerName), nil
}

func calculate(games []gameResult, playerName string) GameMetrics {
	total := len(games)
	var wins, survivals, failures int
	for _, game := range games {
		player := game.PlayerResults[playerName]
		if player.Won {
			wins++
		}
		if player.Survived {
			survivals++
		}
		failures += player.ResponseFailures
	}

	metrics := GameMetrics{
		TotalGames:       total,
		Wins:             wins,
		Losses:           total - wins,
		ResponseFailures: failures,
	}
	if total > 0 {
		metrics.SurvivalRate = float64(survivals) / float64(total)
		metrics.WinRate = float64(wins) / float64(total)
		metrics.FailureRate = float64(failures) / float64(total)
	}
	return metrics
}
