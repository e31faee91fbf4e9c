// Package cli implements the command-line interface for nxncube.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/nxncube"
	"github.com/SeamusWaldron/nxncube/internal/config"
	"github.com/SeamusWaldron/nxncube/internal/logging"
	"github.com/SeamusWaldron/nxncube/internal/recorder"
	"github.com/SeamusWaldron/nxncube/internal/storage"
)

const version = "0.1.0"

var (
	// Global flags
	dbPath    string
	configDir string
	logLevel  string
	verbose   bool

	settings config.Settings
	logFile  *os.File
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "nxncube",
	Short: "NxNxN rotating cube puzzle",
	Long: `nxncube - play, record and analyse NxNxN rotating cube sessions.

Play in the terminal, stream cubie poses to an external renderer over
websocket, and replay or export recorded sessions from the local database.`,
	Version:           version,
	PersistentPreRunE: loadSettings,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file path (default: ~/.nxncube/nxncube.db)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "Directory containing nxncube.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func loadSettings(cmd *cobra.Command, args []string) error {
	if err := config.Load(configDir); err != nil {
		return err
	}
	if dbPath != "" {
		config.Set("dbPath", dbPath)
	}
	if logLevel != "" {
		config.Set("logLevel", logLevel)
	}
	if verbose {
		config.Set("logLevel", "debug")
	}
	settings = config.Current()
	return nil
}

// openLogFile opens the configured log file once. It returns nil when no
// log file is configured or it cannot be opened.
func openLogFile() *os.File {
	if logFile != nil || settings.LogFile == "" {
		return logFile
	}
	if err := os.MkdirAll(filepath.Dir(settings.LogFile), 0755); err != nil {
		return nil
	}
	f, err := os.OpenFile(settings.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil
	}
	logFile = f
	return logFile
}

// newLogger returns the console logger, mirrored to the log file if one is
// configured.
func newLogger() zerolog.Logger {
	if f := openLogFile(); f != nil {
		return logging.New(settings.LogLevel, os.Stderr, f)
	}
	return logging.New(settings.LogLevel, os.Stderr, nil)
}

// fileLogger logs to the log file only. The TUI owns the terminal, so
// without a log file nothing is logged.
func fileLogger() zerolog.Logger {
	f := openLogFile()
	if f == nil {
		return zerolog.Nop()
	}
	return logging.New(settings.LogLevel, f, nil)
}

// getDBPath returns the database path from flag, config or default.
func getDBPath() string {
	return settings.DBPath // empty means default
}

func openDB() (*storage.DB, error) {
	path := getDBPath()
	var db *storage.DB
	var err error

	if path == "" {
		db, err = storage.OpenDefault()
	} else {
		db, err = storage.Open(path)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return db, nil
}

func openStateFile() (*recorder.StateFile, error) {
	var (
		sf  *recorder.StateFile
		err error
	)
	if settings.StateFile != "" {
		sf, err = recorder.NewStateFile(settings.StateFile)
	} else {
		sf, err = recorder.NewDefaultStateFile()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return sf, nil
}

// sessionOptions maps the resolved settings onto session options.
func sessionOptions(log zerolog.Logger) []nxncube.Option {
	opts := []nxncube.Option{
		nxncube.WithDimension(settings.Dimension),
		nxncube.WithScrambleTimes(settings.ScrambleTimes),
		nxncube.WithScrambleDegree(settings.ScrambleDegree),
		nxncube.WithDragThreshold(settings.DragThreshold),
		nxncube.WithDragSensitivity(settings.DragSensitivity),
		nxncube.WithScramblePause(settings.ScramblePause),
		nxncube.WithLogger(log),
	}
	if settings.Seed != 0 {
		opts = append(opts, nxncube.WithSeed(settings.Seed))
	}
	return opts
}

// snapshotPath is where a session's snapshot file is written by default.
func snapshotPath(sf *recorder.StateFile, sessionID string) string {
	return filepath.Join(filepath.Dir(sf.Path()), "snapshots", sessionID+".nxs")
}

// resolveSessionID picks the session named by args, or the latest one when
// last is set.
func resolveSessionID(repo *storage.SessionRepository, args []string, last bool) (string, error) {
	if last {
		s, err := repo.GetLast()
		if err != nil {
			return "", fmt.Errorf("failed to get latest session: %w", err)
		}
		if s == nil {
			return "", fmt.Errorf("no sessions found")
		}
		return s.SessionID, nil
	}
	if len(args) > 0 {
		return args[0], nil
	}
	return "", fmt.Errorf("please provide a session ID or use --last")
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	mins := int(d.Minutes())
	secs := d.Seconds() - float64(mins*60)
	return fmt.Sprintf("%dm%.1fs", mins, secs)
}

// shortID trims a uuid for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
