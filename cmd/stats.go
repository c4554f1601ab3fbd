package main

import (
	"fmt"

	"github.com/richard-senior/cardstats/pkg/cards"
	"github.com/spf13/cobra"
)

var showFrequencies bool

var statsCmd = &cobra.Command{
	Use:   "stats <referee> <team1> <team2>",
	Short: "Caution distributions for a fixture under a referee",
	Long: `Summarise the stored cautions of two teams, overall and under one referee,
and print the chance of seeing fewer than n cards for each team and for the
whole game.`,
	Example: `  cardstats stats "Daniele Orsato" Inter Milan --frequencies`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := cards.NewStore(config.DataPath, config.League)
		rows, err := store.LoadAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load datasets: %w", err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("no datasets under %s, run 'cardstats refresh' first", store.Dir())
		}

		res := cards.Stats(rows, args[0], args[1], args[2])
		out := cmd.OutOrStdout()
		cards.PrintStats(out, res)

		if showFrequencies {
			fmt.Fprintln(out)
			cards.PrintFrequencies(out, "Cards in the whole game", res.Combined)
			for _, t := range res.Teams {
				cards.PrintFrequencies(out, "Cards for "+t.Team, t.Sample)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&showFrequencies, "frequencies", false, "also print the frequency, pdf and cdf tables")
}
