package main

import (
	"fmt"

	"github.com/richard-senior/cardstats/internal/logger"
	"github.com/richard-senior/cardstats/pkg/cards"
	"github.com/spf13/cobra"
)

var (
	configPath   string
	leagueFlag   string
	dataPathFlag string

	// config is loaded once by the root command before any subcommand runs
	config *cards.CardsConfig
)

var rootCmd = &cobra.Command{
	Use:           "cardstats",
	Short:         "Yellow card history and distributions from fbref match logs",
	Long:          "Collect per team match logs from fbref, rebuild who was cautioned in which half, and compute caution distributions per team and referee.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cards.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if leagueFlag != "" {
			cfg.League = leagueFlag
		}
		if dataPathFlag != "" {
			cfg.DataPath = dataPathFlag
		}
		if err := cards.ValidateConfig(cfg); err != nil {
			return err
		}
		if err := configureLogging(cfg); err != nil {
			return err
		}
		config = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $"+cards.ConfigFileEnv+")")
	rootCmd.PersistentFlags().StringVar(&leagueFlag, "league", "", "league key, see 'cardstats leagues'")
	rootCmd.PersistentFlags().StringVar(&dataPathFlag, "data", "", "root directory of the team datasets")

	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(leaguesCmd)
}

func configureLogging(cfg *cards.CardsConfig) error {
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	logger.SetLogFile(cfg.LogFile)
	output := []rune(cfg.LogOutput)
	if len(output) != 1 {
		return fmt.Errorf("log_output must be a single letter, got %q", cfg.LogOutput)
	}
	if output[0] != 'c' {
		logger.SetColour(false)
	}
	return logger.SetLogOutput(output[0])
}
