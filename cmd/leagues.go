package main

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/richard-senior/cardstats/pkg/cards"
	"github.com/spf13/cobra"
)

var leaguesCmd = &cobra.Command{
	Use:   "leagues",
	Short: "List the supported leagues and how many teams are stored for each",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table := tablewriter.NewTable(cmd.OutOrStdout(), tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
		}))
		table.Header("KEY", "COMPETITION", "TEAMS", "PAGE")
		for _, key := range cards.LeagueKeys() {
			league := cards.Leagues[key]
			teams, err := cards.NewStore(config.DataPath, key).Teams(cmd.Context())
			if err != nil {
				return err
			}
			table.Append(key, league.Competition, strconv.Itoa(len(teams)), league.URL(config.BaseURL))
		}
		table.Render()
		return nil
	},
}
