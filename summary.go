package main

import (
	"github.com/spf13/cobra"

	"nypd-dashboard/services"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the complaint summary to the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		t, err := newRepository().Load(cmd.Context())
		if err != nil {
			return err
		}

		insights := services.NewInsightService(logger)
		insights.Print(insights.Generate(t, cfg.TopN))
		return nil
	},
}
