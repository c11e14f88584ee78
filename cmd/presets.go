package cmd

import (
	"fmt"

	"creatorhub/internal/gemini"
	"creatorhub/internal/studio/service"

	"github.com/spf13/cobra"
)

func newPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List generation presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := service.LoadCatalog()
			if err != nil {
				return err
			}
			var rows [][]string
			for _, p := range presets.All() {
				rows = append(rows, []string{p.Type, p.Label, p.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Type", "Label", "Description"}, rows))
			return nil
		},
	}
}

func newVoicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List speech voices",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(gemini.Voices))
			for _, v := range gemini.Voices {
				mark := ""
				if v == gemini.DefaultVoice {
					mark = "default"
				}
				rows = append(rows, []string{v, mark})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Voice", ""}, rows))
			return nil
		},
	}
}
