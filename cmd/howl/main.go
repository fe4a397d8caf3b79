// cmd/howl/main.go
//
// This is the entry point for the howl agent.
// When you run `howl` from any directory, this is what executes.
//
// Flow:
// 1. Load .env and .howl/config.yaml from the working directory
// 2. Wire the agent: memory store, oracle client, bridge server
// 3. Default: serve the bridge with the status board attached
//    `howl serve`: serve headless
//    `howl metrics <dir> <player>`: aggregate past game results

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/kingrea/howl/internal/agent"
	"github.com/kingrea/howl/internal/bridge"
	"github.com/kingrea/howl/internal/config"
	"github.com/kingrea/howl/internal/journal"
	"github.com/kingrea/howl/internal/logging"
	"github.com/kingrea/howl/internal/oracle"
	"github.com/kingrea/howl/internal/results"
	"github.com/kingrea/howl/internal/tui"
)

func main() {
	// Missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "serve":
			runServe(false)
			return
		case "metrics":
			runMetrics(args[1:])
			return
		case "help", "-h", "--help":
			usage()
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
			usage()
			os.Exit(1)
		}
	}
	runServe(true)
}

func usage() {
	fmt.Println(`howl - an autonomous werewolf player

Usage:
  howl                        run the agent with the status board
  howl serve                  run the agent headless
  howl metrics <dir> <name>   aggregate game results for a player`)
}

// runServe wires the full agent and serves the bridge, optionally with the
// TUI status board attached.
func runServe(withBoard bool) {
	cwd, err := os.Getwd()
	if err != nil {
		fatal("get working directory: %v", err)
	}
	if err := config.InitHowlDir(cwd); err != nil {
		fatal("initialize .howl directory: %v", err)
	}
	cfg, err := config.NewConfig(cwd)
	if err != nil {
		fatal("load configuration: %v", err)
	}

	logger, err := logging.New(cwd)
	if err != nil {
		fatal("open log file: %v", err)
	}
	defer logger.Close()

	gameJournal, err := journal.New(journal.SessionPath(cfg.JournalDir(), time.Now()))
	if err != nil {
		fatal("open game journal: %v", err)
	}

	client := oracle.NewHTTPClient(oracle.Settings{
		BaseURL: cfg.File.Oracle.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.File.Oracle.Model,
		Timeout: cfg.OracleTimeout(),
	})
	if cfg.APIKey == "" {
		// The agent degrades to fallbacks without a key; warn loudly but run.
		logger.Printf("main: no API key configured, the agent will only use fallback responses")
		gameJournal.Warn("no API key configured")
	}

	player := agent.New(cfg.File.Agent.Name, client,
		agent.WithChannels(agent.Channels{
			Game:      cfg.File.Channels.Game,
			Pack:      cfg.File.Channels.Pack,
			Moderator: cfg.File.Channels.Moderator,
		}),
		agent.WithLogger(logger),
		agent.WithJournal(gameJournal),
	)

	feed := bridge.NewRouter(bridge.RouterWithLogger(logger))
	server := bridge.NewServer(bridge.SettingsFromConfig(cfg), player,
		bridge.WithFeed(feed),
		bridge.WithJournal(gameJournal),
		bridge.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		fatal("start bridge: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	gameJournal.Info("agent %s listening on %s", player.Name(), server.Addr())
	fmt.Printf("howl: agent %s listening on %s\n", player.Name(), server.Addr())

	if !withBoard {
		<-ctx.Done()
		return
	}

	sub := feed.Subscribe(bridge.TopicTurns)
	defer sub.Close()
	p := tea.NewProgram(
		tui.NewApp(player.Name(), sub),
		tea.WithAltScreen(),
	)
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	if _, err := p.Run(); err != nil {
		fatal("run status board: %v", err)
	}
}

// runMetrics aggregates past game results without running the agent.
func runMetrics(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: howl metrics <results-dir> <player-name>")
		os.Exit(1)
	}
	collector := results.NewCollector(results.WithLogger(stderrLogger{}))
	metrics, err := collector.FromDir(args[0], args[1])
	if err != nil {
		fatal("collect metrics: %v", err)
	}
	fmt.Println(metrics.Summary())
}

type stderrLogger struct{}

func (stderrLogger) Printf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "howl: "+format+"\n", args...)
	os.Exit(1)
}
