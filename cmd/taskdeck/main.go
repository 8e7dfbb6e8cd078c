package main

import (
	"context"
	"fmt"
	"io"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/steveyegge/taskdeck/internal/category"
	"github.com/steveyegge/taskdeck/internal/config"
	"github.com/steveyegge/taskdeck/internal/events"
	"github.com/steveyegge/taskdeck/internal/logging"
	"github.com/steveyegge/taskdeck/internal/storage"
	"github.com/steveyegge/taskdeck/internal/tasks"
)

var (
	dbPath      string
	backendName string
	configPath  string
	verbose     bool

	cfg      *config.Config
	logger   = zerolog.Nop()
	store    storage.Store
	bus      *events.Bus
	registry *category.Registry
	repo     *tasks.Repository

	// out receives command output; tests swap it for a buffer
	out io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "taskdeck",
	Short: "Personal task manager with categories and an upcoming view",
	Long: `taskdeck keeps dated tasks with subtask checklists, filed under
categories and browsable through the "All" and "Upcoming" views.

State lives in .taskdeck/ in the current directory (see 'taskdeck init').`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !needsStore(cmd) {
			return
		}
		if err := openStore(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Store path (default: discover .taskdeck/*.db)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Store backend: sqlite, postgres, file or memory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: .taskdeck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
}

// needsStore reports whether cmd operates on task state
func needsStore(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "init", "version", "help", "completion":
		return false
	}
	return true
}

// openStore loads configuration and wires the store, registry and repository
func openStore(ctx context.Context) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if backendName != "" {
		cfg.Storage.Backend = backendName
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err = logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}

	if cfg.Storage.Backend == storage.BackendSQLite && cfg.Storage.Path == "" {
		path, err := storage.DiscoverDatabase()
		if err != nil {
			return err
		}
		cfg.Storage.Path = path
	}

	s, err := storage.NewStorage(ctx, cfg.StoreConfig())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	logger.Debug().Str("backend", cfg.Storage.Backend).Str("path", cfg.Storage.Path).Msg("store opened")

	return wire(s, cfg.Upcoming.Mode)
}

// wire builds the services over s
func wire(s storage.Store, mode string) error {
	m, err := tasks.ParseMode(mode)
	if err != nil {
		return err
	}

	store = s
	bus = events.NewBus()
	bus.Subscribe(func(e *events.Event) {
		logger.Debug().Str("event", string(e.Type)).Str("category", e.Category).Str("task", e.Task).Msg(e.Message)
	})
	registry = category.New(store, category.WithBus(bus), category.WithLogger(logger))
	repo = tasks.New(store, registry, tasks.WithMode(m), tasks.WithBus(bus), tasks.WithLogger(logger))
	return nil
}

// exitOnError prints err the way every command reports failures and exits
func exitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
