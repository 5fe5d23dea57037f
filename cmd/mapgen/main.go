// Command mapgen generates a hex world map and optionally stores, exports or
// serves it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexmap/internal/api"
	"github.com/talgya/hexmap/internal/archive"
	"github.com/talgya/hexmap/internal/mapgen"
	"github.com/talgya/hexmap/internal/persistence"
	"github.com/talgya/hexmap/internal/world"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command with args and returns the process exit code.
// Deferred cleanup runs before main exits.
func run(args []string) int {
	fs := flag.NewFlagSet("mapgen", flag.ContinueOnError)
	var (
		width       = fs.Int("width", 40, "map width in columns")
		height      = fs.Int("height", 24, "map height in rows")
		preset      = fs.String("preset", mapgen.DefaultPreset, "preset name")
		seed        = fs.String("seed", "", "seed: an integer, any string (hashed), or empty for random")
		players     = fs.Int("players", 0, "player count (0 = preset default)")
		presetsPath = fs.String("presets", "", "YAML file with additional presets (optional)")
		dbPath      = fs.String("db", os.Getenv("MAPGEN_DB"), "SQLite database to save the map into (optional)")
		outPath     = fs.String("out", "", "write a compressed map archive to this path (optional)")
		serve       = fs.Bool("serve", false, "serve the HTTP API after generating")
		port        = fs.Int("port", 8080, "HTTP API port (with -serve)")
		logLevel    = fs.String("log-level", "info", "log level: debug, info, warn, error")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	level, err := parseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// ── Presets ───────────────────────────────────────────────────────
	book := mapgen.NewPresetBook()
	if *presetsPath != "" {
		names, err := book.LoadFile(*presetsPath)
		if err != nil {
			slog.Error("failed to load presets", "path", *presetsPath, "error", err)
			return 1
		}
		slog.Info("presets loaded", "path", *presetsPath, "presets", strings.Join(names, ","))
	}

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if *dbPath != "" {
		db, err = persistence.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			return 1
		}
		defer db.Close()
		slog.Info("database opened", "path", *dbPath)
	}

	// ── Generation ────────────────────────────────────────────────────
	cfg, err := mapgen.BuildConfig(mapgen.Options{
		Width:       *width,
		Height:      *height,
		Preset:      *preset,
		Seed:        *seed,
		PlayerCount: *players,
	}, book)
	if err != nil {
		slog.Error("invalid generation options", "error", err)
		return 1
	}
	gen, err := mapgen.NewGeneratorWithConfig(cfg, nil)
	if err != nil {
		slog.Error("invalid generation options", "error", err)
		return 1
	}
	report, err := gen.GenerateDetailed()
	if err != nil {
		slog.Error("generation failed", "error", err)
		return 1
	}
	m := report.Map

	for _, r := range report.Results {
		slog.Info("pass", "name", r.Pass, "tiles", humanize.Comma(int64(r.TilesModified)), "message", r.Message)
	}
	counts := world.TerrainCounts(m)
	for _, t := range world.AllTerrains {
		if counts[t] == 0 {
			continue
		}
		slog.Info("terrain", "type", world.TerrainName(t), "count", humanize.Comma(int64(counts[t])),
			"share", fmt.Sprintf("%.1f%%", 100*float64(counts[t])/float64(m.TileCount())))
	}
	spawns := m.Spawns()
	for _, p := range m.SpawnPlayers() {
		c := spawns[p]
		slog.Info("spawn", "player", p, "coord", c.String(), "terrain", world.TerrainName(m.Get(c.Q, c.R).Terrain))
	}

	// ── Output ────────────────────────────────────────────────────────
	if db != nil {
		id, err := db.SaveMap(m)
		if err != nil {
			slog.Error("save failed", "error", err)
			return 1
		}
		fmt.Printf("Saved as %s\n", id)
	}
	if *outPath != "" {
		if err := archive.WriteFile(*outPath, m); err != nil {
			slog.Error("archive write failed", "path", *outPath, "error", err)
			return 1
		}
		if fi, err := os.Stat(*outPath); err == nil {
			slog.Info("archive written", "path", *outPath, "size", humanize.Bytes(uint64(fi.Size())))
		}
	}

	fmt.Printf("\n%s: %s tiles, preset %s, seed %d, %d players, generated in %s.\n",
		m, humanize.Comma(int64(m.TileCount())), m.Preset, m.Seed, len(spawns), report.Elapsed.Round(time.Microsecond))

	if !*serve {
		return 0
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("MAPGEN_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("MAPGEN_ADMIN_KEY not set, POST and DELETE endpoints will be disabled")
	}
	apiServer := &api.Server{
		Presets:  book,
		DB:       db,
		Port:     *port,
		AdminKey: adminKey,
	}
	srv := apiServer.Start()
	fmt.Printf("API: http://localhost:%d/api/v1/generate (Ctrl+C to stop)\n", *port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown failed", "error", err)
		return 1
	}
	return 0
}

// parseLevel maps a -log-level value onto a slog level.
func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid -log-level %q: %w", s, err)
	}
	return level, nil
}
