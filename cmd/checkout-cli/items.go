package main

import (
	"fmt"

	"checkout-service/services"

	"github.com/spf13/cobra"
)

func itemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "items",
		Short: "List the books on sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := orchestrator(cmd)
			out := cmd.OutOrStdout()
			for _, id := range []string{"1", "2", "3"} {
				item, err := orch.Item(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("item %s: %w", id, err)
				}
				fmt.Fprintf(out, "%s  %8s  %s\n", item.ID, services.FormatMinorUnits(item.Amount), item.Title)
			}
			return nil
		},
	}
}
