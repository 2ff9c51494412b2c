package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"sitechat/internal/config"
	"sitechat/internal/logging"
)

var (
	// cfgPath is an explicit config file; empty means config.LoadDefault
	cfgPath string
	// logLevel overrides logging.level from the config
	logLevel string

	cfg    *config.AppConfig
	logger *log.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sitechat",
	Short: "Ask questions about a web page or local documents",
	Long: `sitechat loads a single web page or a set of local text files, indexes
their passages and answers questions with the most relevant ones.

Examples:
  # Start the chat UI and load a page right away
  sitechat chat https://go.dev/doc/effective_go

  # One-shot question against local notes
  sitechat ask "notes/*.md" how do I rotate the keys`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (defaults to ./config.yaml or ~/.config/sitechat/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
}

// setup loads .env and the config, then builds the logger. Without a
// configured log file, entries go to fallbackFile when set, else to console.
func setup(console io.Writer, fallbackFile string) error {
	_ = godotenv.Load()

	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = fallbackFile
	}
	logger, err = logging.New(logging.Options{Level: cfg.Logging.Level, File: cfg.Logging.File}, console)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	return nil
}

// defaultLogFile is used by the chat UI so log output never draws over it.
func defaultLogFile() string {
	p, err := config.UserPath("sitechat.log")
	if err != nil {
		return filepath.Join(os.TempDir(), "sitechat.log")
	}
	return p
}
