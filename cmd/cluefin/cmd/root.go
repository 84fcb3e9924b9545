// Package cmd - cluefin CLI commands
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kgcrom/cluefin-sub000/internal/pkg/config"
	"github.com/kgcrom/cluefin-sub000/internal/pkg/logger"
)

const (
	serviceName    = "cluefin"
	serviceVersion = "0.3.0"
)

var (
	// 공통 플래그
	envFile string
	verbose bool

	cfg *config.Config
)

// rootCmd 루트 커맨드
var rootCmd = &cobra.Command{
	Use:   "cluefin",
	Short: "KIS daily chart importer",
	Long: `cluefin - KIS daily chart importer

Imports daily OHLCV charts for domestic (KRX) and overseas stocks from the
KIS Open API into PostgreSQL.

Commands:
    import      domestic / overseas chart import
    db          migrate, stats, fetch logs
    serve       HTTP API (Port 8099)
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute 루트 커맨드 실행
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file loaded before .env")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(serveCmd)
}

// initConfig loads configuration and initializes the global logger.
func initConfig() error {
	// KIS dates are exchange-local; default windows are computed in KST.
	if loc, err := time.LoadLocation("Asia/Seoul"); err == nil {
		time.Local = loc
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		loaded.Logging.Level = "debug"
	}
	cfg = loaded

	return logger.Init(logger.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		FileEnabled:    cfg.Logging.FileEnabled,
		FilePath:       cfg.Logging.FilePath,
		RotationSize:   cfg.Logging.RotationSize,
		RetentionDays:  cfg.Logging.RetentionDays,
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
	})
}

// signalContext is cancelled on SIGINT/SIGTERM; an import then stops after
// the chunk in flight.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
