// Command ecosim runs the Ecosphere ecosystem builder engine and its HTTP API.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/talgya/ecosphere/internal/api"
	"github.com/talgya/ecosphere/internal/eco"
	"github.com/talgya/ecosphere/internal/persistence"
	"github.com/talgya/ecosphere/internal/species"
)

func main() {
	// Text logs on a terminal, JSON when piped to a collector.
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("Ecosphere — Ecosystem Health & Population Dynamics Engine")

	dbPath := envOr("ECOSIM_DB", "data/ecosim.db")
	port := envInt("ECOSIM_PORT", 8080)
	seed := int64(envInt("ECOSIM_SEED", 0))
	catalogPath := os.Getenv("ECOSIM_CATALOG")
	adminKey := os.Getenv("ECOSIM_ADMIN_KEY")

	// ── Species Catalog ───────────────────────────────────────────────
	var catalog *species.Catalog
	if catalogPath != "" {
		var err error
		catalog, err = species.LoadFile(catalogPath)
		if err != nil {
			slog.Error("failed to load catalog", "path", catalogPath, "error", err)
			os.Exit(1)
		}
		slog.Info("catalog loaded", "path", catalogPath, "species", catalog.Len())
	} else {
		catalog = species.Builtin()
		slog.Info("using builtin catalog", "species", catalog.Len())
	}

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		slog.Error("failed to create database directory", "path", filepath.Dir(dbPath), "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	// ── Engine ────────────────────────────────────────────────────────
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ecosystem := eco.New(catalog, eco.NewRand(seed))
	driver := eco.NewDriver(ecosystem)

	// ── HTTP API ──────────────────────────────────────────────────────
	if adminKey == "" {
		slog.Warn("ECOSIM_ADMIN_KEY not set — reset endpoint will be disabled")
	}
	server := api.New(ecosystem, driver, db, port, adminKey)
	server.Start()

	slog.Info("ready", "port", port, "tick_interval", driver.Interval.String())

	// ── Shutdown ──────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	// Cancel the tick driver so no tick fires after teardown.
	driver.Stop()
	slog.Info("simulation driver stopped", "tick", ecosystem.Tick())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("invalid integer env value, using default", "key", key, "value", v, "default", fallback)
	}
	return fallback
}
