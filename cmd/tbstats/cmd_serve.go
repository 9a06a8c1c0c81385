package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anrid/tb-burden/pkg/dashboard"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = serveAddr
		}

		db := openDatabase()
		// Load up front so problems show in the log; the dashboard reports
		// them to every visitor too.
		if ds, err := db.Dataset(); err != nil {
			logger.Error("could not load dataset", zap.String("path", db.Path), zap.Error(err))
		} else {
			first, last := ds.YearBounds()
			logger.Info("dataset loaded",
				zap.String("path", ds.Path),
				zap.Int("rows", len(ds.Records)),
				zap.Int("countries", len(ds.Countries())),
				zap.Int("first_year", first),
				zap.Int("last_year", last))
		}

		srv := dashboard.New(db, dashboard.Options{
			Addr:                cfg.Server.Addr,
			DefaultCountry:      cfg.Data.DefaultCountry,
			DefaultCountryCount: cfg.Data.DefaultCountryCount,
			ChartWidth:          cfg.Chart.Width,
			ChartHeight:         cfg.Chart.Height,
		}, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}
