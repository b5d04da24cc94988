package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/brogergvhs/malview/internal/config"
	"github.com/brogergvhs/malview/internal/server"
	"github.com/brogergvhs/malview/internal/settings"
	"github.com/brogergvhs/malview/internal/ui"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	flagServeAddr       string
	flagServeNoSettings bool
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve overviews and settings over HTTP",
		RunE:  runServe,
	}

	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&flagServeNoSettings, "no-settings", false, "do not expose the settings store")
	serveCmd.Flags().BoolVar(&flagEnglishTitles, "english-titles", false, "prefer the English title")
	serveCmd.Flags().StringVar(&flagLocale, "locale", "", "locale for labels, dates and durations (e.g. de)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:  flagIgnoreConfig,
		Debug:         flagDebug,
		ServeAddr:     flagServeAddr,
		EnglishTitles: flagEnglishTitles,
		Locale:        flagLocale,
	})
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	logSvc.Debugf("Config file: %s", usedPath)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *settings.Store
	if !flagServeNoSettings {
		store, err = openSettings(ctx, cfg, logSvc)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logSvc.Errorf("settings: %v", err)
			}
		}()
	}

	reg, err := newRegistry(cfg, logSvc, liveEnglishTitles(store))
	if err != nil {
		return err
	}
	p, err := siteProvider(reg)
	if err != nil {
		return err
	}

	srv := server.New(p, store, logSvc)
	if err := srv.Run(ctx, cfg.ServeAddr); err != nil {
		return fmt.Errorf("serve %s: %w", cfg.ServeAddr, err)
	}
	return nil
}
