package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"longbox/internal/api"
	"longbox/internal/library"
	"longbox/internal/store"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List comics by most recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(svc *library.Service, _ *store.Store) error {
				items, err := svc.ListRecent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()

				if ctx.jsonOutput() {
					return printJSON(out, api.ComicListResponse{Items: api.FromItems(items)})
				}
				if len(items) == 0 {
					fmt.Fprintln(out, "Library is empty")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						shortID(item.ID),
						item.Name,
						formatSize(item.Size),
						formatTimestamp(item.UpdatedAt),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "NAME", "SIZE", "LAST ACTIVITY"}, rows, 2))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries to show (default from config)")
	return cmd
}
