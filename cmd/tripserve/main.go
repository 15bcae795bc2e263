/*
Package main runs the tripserve typeahead server and its debugging CLI.

tripserve loads the trip catalog, indexes every trip name and resort name in
a bounded prefix index and answers typeahead, listing and lookup requests.
It is meant to run as a child process of the admin backend, speaking msgpack
over stdin/stdout, or interactively for testing.

# Usage

Start the IPC server with the default config and seed file:

	tripserve

Use a persistent bolt store seeded from a custom file, with debug logs:

	tripserve -db data/trips.db -seed data/trips.toml -d

Run the interactive CLI:

	tripserve -c -prmin 2

# Catalog

Trips come from a store: an in-memory store (default) or a bbolt file when
-db is given or catalog.backend = "bolt". An empty store is filled from the
TOML seed file on startup:

	[[trip]]
	code = "GALR210214"
	name = "Gale Reef"
	resort = "Emerald Bay, 3 stars"
	per_person = "799.00"

# Configuration

The TOML config is created with defaults under the user config dir when
missing (see -config):

	[server]
	min_prefix = 1
	max_prefix = 60
	enable_filter = false

	[catalog]
	backend = "memory"
	seed_file = "data/trips.toml"
	db_path = "data/trips.db"

	[listing]
	default_page_size = 10
	max_page_size = 50

# IPC Protocol

See package server for the message layout. A typeahead round trip:

	{"id": "req1", "op": "suggest", "p": "daw"}
	{"id": "req1", "s": [{"w": "Dawson's Reef", "r": 1}], "c": 1, "t": 9}
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bastiangx/tripserve/internal/cli"
	"github.com/bastiangx/tripserve/internal/logger"
	"github.com/bastiangx/tripserve/internal/utils"
	"github.com/bastiangx/tripserve/pkg/cart"
	"github.com/bastiangx/tripserve/pkg/catalog"
	"github.com/bastiangx/tripserve/pkg/config"
	"github.com/bastiangx/tripserve/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version        = "0.3.0"
	AppName        = "tripserve"
	configFileName = "tripserve.toml"
)

// sigHandler is a simple handler for OS signals to exit normally.
// cleanup runs before exit so a bolt store is closed cleanly.
func sigHandler(cleanup func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cleanup()
		os.Exit(0)
	}()
}

// main only wires packages together; the logic lives in catalog, server and cli.
func main() {
	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	configFlag := flag.String("config", "", "Path to the TOML config (default: user config dir)")
	seedFlag := flag.String("seed", "", "TOML seed catalog used when the store is empty (overrides config)")
	dbFlag := flag.String("db", "", "bbolt trip database; implies the bolt backend (overrides config)")
	minPrefix := flag.Int("prmin", 0, "Minimum prefix length in CLI mode (default from config)")
	maxPrefix := flag.Int("prmax", 0, "Maximum prefix length in CLI mode (default from config)")
	noFilter := flag.Bool("no-filter", false, "Disable input filtering in CLI mode (DBG only)")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}
	// stdout is reserved for IPC responses
	log.SetOutput(os.Stderr)

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}

	configPath := *configFlag
	if configPath == "" {
		configPath = pathResolver.GetConfigPath(configFileName)
	}
	log.Debugf("Using config file: (%s)", configPath)
	appConfig, err := config.InitConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *dbFlag != "" {
		appConfig.Catalog.Backend = config.BackendBolt
		appConfig.Catalog.DBPath = *dbFlag
	}
	if *seedFlag != "" {
		appConfig.Catalog.SeedFile = *seedFlag
	}

	store, err := openStore(appConfig.Catalog, pathResolver)
	if err != nil {
		log.Fatalf("Failed to open trip store: %v", err)
	}
	defer store.Close()
	sigHandler(func() { store.Close() })

	if err := seedIfEmpty(store, pathResolver.ResolveDataFile(appConfig.Catalog.SeedFile)); err != nil {
		store.Close()
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	cat := catalog.New(store, catalog.WithPaging(appConfig.Listing.DefaultPageSize, appConfig.Listing.MaxPageSize))
	if err := cat.Load(); err != nil {
		store.Close()
		log.Fatalf("Failed to load catalog: %v", err)
	}
	log.Debug("Catalog loaded", "trips", cat.Len())

	carts, err := openCarts(store, cat)
	if err != nil {
		store.Close()
		log.Fatalf("Failed to open cart store: %v", err)
	}

	// CLI is mainly for testing and dbg purposes, the admin app talks IPC.
	if *cliMode {
		log.SetReportTimestamp(false)
		minLen, maxLen := appConfig.CLI.DefaultMinLen, appConfig.CLI.DefaultMaxLen
		if *minPrefix > 0 {
			minLen = *minPrefix
		}
		if *maxPrefix > 0 {
			maxLen = *maxPrefix
		}
		inputHandler := cli.NewInputHandler(cat, os.Stdin, os.Stdout, minLen, maxLen, *noFilter || appConfig.CLI.DefaultNoFilter)
		if err := inputHandler.Start(); err != nil {
			log.Errorf("CLI error: %v", err)
		}
		return
	}

	showStartupInfo(cat, store, appConfig.Catalog.Backend, configPath)
	srv := server.NewServer(cat, carts, appConfig)
	if err := srv.Start(); err != nil {
		log.Errorf("Server stopped: %v", err)
	}
}

// openStore opens the configured backend.
func openStore(cfg config.CatalogConfig, pr *utils.PathResolver) (catalog.Store, error) {
	switch cfg.Backend {
	case config.BackendBolt:
		path := pr.ResolveDataFile(cfg.DBPath)
		if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
		return catalog.OpenBoltStore(path)
	default:
		return catalog.NewMemoryStore(), nil
	}
}

// openCarts keeps carts next to the trips when they live in a bolt file.
func openCarts(store catalog.Store, cat *catalog.Catalog) (*cart.Service, error) {
	var carts cart.Store = cart.NewMemoryStore()
	if bs, ok := store.(*catalog.BoltStore); ok {
		s, err := cart.NewBoltStore(bs.DB())
		if err != nil {
			return nil, err
		}
		carts = s
	}
	return cart.NewService(carts, cat), nil
}

// seedIfEmpty fills an empty store from the seed file. A missing seed file
// only leaves the catalog empty.
func seedIfEmpty(store catalog.Store, seedPath string) error {
	trips, err := store.List()
	if err != nil {
		return err
	}
	if len(trips) > 0 {
		log.Debugf("Store already holds %d trips, skipping seed", len(trips))
		return nil
	}
	if !utils.FileExists(seedPath) {
		log.Warnf("No seed file at %s, running with an empty catalog...", seedPath)
		return nil
	}
	seed, err := catalog.LoadSeedFile(seedPath)
	if err != nil {
		return err
	}
	return catalog.Seed(store, seed)
}

func printVersion() {
	l := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)
	l.SetOutput(os.Stdout)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ tripserve ] trip typeahead for the travlr admin")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
}

// showStartupInfo logs basic info about the init process to stderr.
func showStartupInfo(cat *catalog.Catalog, store catalog.Store, backend, configPath string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	stats := cat.Stats()
	log.Infof("%s %s", AppName, Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Info("config", "path", utils.GetAbsolutePath(configPath))
	log.Info("catalog", "backend", backend, "trips", stats["trips"], "nodes", stats["nodes"])
	if bs, ok := store.(*catalog.BoltStore); ok {
		log.Info("catalog", "db", utils.GetAbsolutePath(bs.Path()))
	}
	log.Info("status: ready")
}
