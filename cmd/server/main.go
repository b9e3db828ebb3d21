// Command server runs the Memory Scramble board server: it loads a
// board file, serves the player-facing board API, and optionally an
// admin surface, per SPEC_FULL.md's process surface (§6.4).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"memory-game-server/admin"
	"memory-game-server/auth"
	"memory-game-server/board"
	"memory-game-server/boardfile"
	"memory-game-server/config"
	"memory-game-server/httpapi"
	"memory-game-server/store"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found; using environment variables", "tag", "server")
	}

	if len(args) < 1 {
		return fmt.Errorf("missing PORT")
	}
	port, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid PORT")
	}
	if port < 0 {
		return fmt.Errorf("invalid PORT")
	}
	if len(args) < 2 {
		return fmt.Errorf("missing FILENAME")
	}
	filename := args[1]

	if port == 0 {
		port = config.DefaultPort
	}

	cfg := config.Load()

	parsed, err := boardfile.ParseFile(filename)
	if err != nil {
		return fmt.Errorf("loading board file: %w", err)
	}

	ctx := context.Background()
	telemStore, err := store.New(ctx, cfg.DatabaseURL, slog.Default())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if telemStore != nil {
		defer telemStore.Close()
	}

	b, err := board.New(parsed.Rows, parsed.Cols, parsed.Labels,
		board.WithFlipWait(time.Duration(cfg.FlipWaitSec)*time.Second),
		board.WithLogger(slog.Default()),
		board.WithTelemetry(telemStore),
	)
	if err != nil {
		return fmt.Errorf("building board: %w", err)
	}

	mux := http.NewServeMux()

	apiHandler := httpapi.New(b, time.Duration(cfg.WatchTimeoutSec)*time.Second, cfg.StaticDir, slog.Default())
	apiHandler.Routes(mux)

	var validator *auth.Validator
	if cfg.AuthIssuerURL != "" {
		validator, err = auth.NewValidator(cfg.AuthIssuerURL)
		if err != nil {
			return fmt.Errorf("configuring admin auth: %w", err)
		}
		slog.Info("admin surface enabled", "tag", "server", "issuer", cfg.AuthIssuerURL)
	} else {
		slog.Info("admin surface disabled: AUTH_ISSUER_URL not set", "tag", "server")
	}
	var adminValidator admin.Validator
	if validator != nil {
		adminValidator = validator
	}
	adminHandler := admin.New(adminValidator, telemStore, b, slog.Default())
	adminHandler.Routes(mux)

	addr := fmt.Sprintf(":%d", port)
	slog.Info("memory scramble server listening", "tag", "server", "addr", addr, "rows", parsed.Rows, "cols", parsed.Cols)
	return http.ListenAndServe(addr, mux)
}
