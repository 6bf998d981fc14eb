package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fitglide/fitglide/internal/coach"
	"github.com/fitglide/fitglide/internal/config"
	"github.com/fitglide/fitglide/internal/store"
	"github.com/fitglide/fitglide/internal/styles"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var BUILD_VERSION = "dev"

var limitFlag = flag.Int("n", 0, "number of transactions to show (defaults to recent_limit from config)")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		fmt.Println("Usage of fitglide:")
		fmt.Println(usage)
		flag.PrintDefaults()
		return
	}

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.ERROR("fitglide: "+err.Error()))
		os.Exit(1)
	}

	logger, err := initializeLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync() // Flush any buffered log entries
	}()

	logger.Info("-------- new fitglide session --------", zap.Any("args", os.Args))

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		styles.SetColorProfile(termenv.Ascii)
	}

	st, closeStore := initializeStore(cfg, logger)
	defer closeStore()

	coachManager := coach.NewCoachManager(st, logger, cfg.BannerDuration)

	limit := cfg.RecentLimit
	if *limitFlag > 0 {
		limit = *limitFlag
	}
	err = run(coachManager, flag.Args(), limit, os.Stdout)

	coachManager.Close()
	fmt.Print(coach.RenderBanners(coachManager.GetPendingNotifications()))

	if err != nil {
		logger.Warn("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, styles.ERROR("fitglide: "+err.Error()))
		closeStore()
		_ = logger.Sync()
		os.Exit(1)
	}
}

func initializeLogger(cfg *config.Config) (*zap.Logger, error) {
	logLevel, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		cfg.LogFile,
	}
	return loggerConfig.Build()
}

// initializeStore opens the sqlite ledger, falling back to an in-memory
// store so the CLI stays usable when the database cannot be opened.
func initializeStore(cfg *config.Config, logger *zap.Logger) (store.Store, func()) {
	db, err := store.Open(cfg.DatabaseFile)
	if err != nil {
		logger.Error("failed to open ledger database, changes will not be saved",
			zap.String("path", cfg.DatabaseFile), zap.Error(err))
		fmt.Fprintln(os.Stderr, styles.ERROR("fitglide: ledger database unavailable, changes will not be saved"))
		return store.NewMemory(), func() {}
	}

	closed := false
	return db, func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			logger.Warn("failed to close ledger database", zap.Error(err))
		}
	}
}
