package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"longbox/internal/api"
	"longbox/internal/library"
	"longbox/internal/store"
)

func newStorageCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "storage",
		Short: "Show library storage usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(svc *library.Service, st *store.Store) error {
				estimate, err := svc.StorageEstimate(cmd.Context())
				if err != nil {
					return err
				}
				stats, err := st.StorageBytes(cmd.Context())
				if err != nil {
					return err
				}
				count, err := st.ItemCount(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if ctx.jsonOutput() {
					return printJSON(out, api.StorageView{
						UsedBytes:  estimate.UsedBytes,
						QuotaBytes: estimate.QuotaBytes,
					})
				}

				rows := [][]string{
					{"Comics", fmt.Sprintf("%d", count)},
					{"Archives", formatSize(stats.BlobBytes)},
					{"Page cache", formatSize(stats.PageCacheBytes)},
					{"Thumbnails", formatSize(stats.ThumbnailBytes)},
					{"Total", formatSize(stats.Total())},
				}
				if estimate.QuotaBytes > 0 {
					rows = append(rows, []string{"Filesystem", formatSize(int64(estimate.QuotaBytes))})
				}
				fmt.Fprintln(out, renderTable([]string{"RESOURCE", "USAGE"}, rows, 1))
				return nil
			})
		},
	}
}
