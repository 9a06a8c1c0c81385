// Command tbstats serves and summarizes WHO tuberculosis prevalence data.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/anrid/tb-burden/pkg/config"
	"github.com/anrid/tb-burden/pkg/stats"
)

var (
	// Global flags
	configPath string
	dataPath   string
	dataShape  string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tbstats",
	Short: "Explore estimated TB prevalence by country and year",
	Long: `tbstats loads a WHO TB burden dataset (CSV, XLSX or XLS) and either serves
an interactive dashboard or prints and exports summaries from the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("data") {
			cfg.Data.Path = dataPath
		}
		if cmd.Flags().Changed("shape") {
			cfg.Data.Shape = dataShape
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		zc := zap.NewProductionConfig()
		level, err := zapcore.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return err
		}
		zc.Level = zap.NewAtomicLevelAt(level)
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "tbstats.yaml", "Config file (optional)")
	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "Dataset file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dataShape, "shape", "", "Column shape: normalized or renamed (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd, showCmd, createCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDatabase() *stats.Database {
	return stats.NewDatabase(cfg.Data.Path, cfg.DataShape())
}

// selectionFlags are shared by the commands that filter the dataset.
type selectionFlags struct {
	countries []string
	from, to  int
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.countries, "country", nil, "Country to include (repeatable; default India or the first 3)")
	cmd.Flags().IntVar(&f.from, "from", 0, "First year (default: first year in the data)")
	cmd.Flags().IntVar(&f.to, "to", 0, "Last year (default: last year in the data)")
}

// state turns the flags into a clamped selection over ds.
func (f *selectionFlags) state(ds *stats.Dataset) stats.FilterState {
	s := stats.DefaultFilterState(ds, cfg.Data.DefaultCountry, cfg.Data.DefaultCountryCount)
	if len(f.countries) > 0 {
		s.Countries = f.countries
	}
	if f.from != 0 {
		s.YearMin = f.from
	}
	if f.to != 0 {
		s.YearMax = f.to
	}
	return s.Clamp(ds)
}
