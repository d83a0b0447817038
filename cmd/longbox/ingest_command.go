package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"longbox/internal/api"
	"longbox/internal/library"
	"longbox/internal/store"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest FILE...",
		Short: "Add comic archives to the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(svc *library.Service, _ *store.Store) error {
				out := cmd.OutOrStdout()
				var views []api.ItemView

				for _, arg := range args {
					data, err := os.ReadFile(arg)
					if err != nil {
						return fmt.Errorf("read %s: %w", arg, err)
					}
					item, err := svc.Ingest(cmd.Context(), library.Upload{
						Name: filepath.Base(arg),
						Size: int64(len(data)),
						Data: data,
					})
					if err != nil {
						return fmt.Errorf("ingest %s: %w", arg, err)
					}
					if ctx.jsonOutput() {
						views = append(views, api.FromItem(item))
						continue
					}
					fmt.Fprintf(out, "%s  %s (%s)\n", item.ID, item.Name, formatSize(item.Size))
				}

				if ctx.jsonOutput() {
					return printJSON(out, api.ComicListResponse{Items: views})
				}
				return nil
			})
		},
	}
}
