package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"longbox/internal/api"
	"longbox/internal/library"
	"longbox/internal/store"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show COMIC",
		Short: "Show one comic and its reading progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(svc *library.Service, st *store.Store) error {
				item, err := resolveComicID(cmd.Context(), svc, args[0])
				if err != nil {
					return err
				}
				meta, err := svc.Progress(cmd.Context(), item.ID)
				if err != nil {
					return err
				}
				cached, err := st.PageCount(cmd.Context(), item.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if ctx.jsonOutput() {
					return printJSON(out, api.ComicResponse{
						Item:     api.FromItem(item),
						Progress: api.FromMetadata(meta),
					})
				}

				fmt.Fprintf(out, "ID:            %s\n", item.ID)
				fmt.Fprintf(out, "Name:          %s\n", item.Name)
				fmt.Fprintf(out, "Size:          %s\n", formatSize(item.Size))
				fmt.Fprintf(out, "Type:          %s\n", item.MIMEType)
				fmt.Fprintf(out, "Content hash:  %s\n", item.ContentHash)
				fmt.Fprintf(out, "Added:         %s\n", formatTimestamp(item.CreatedAt))
				fmt.Fprintf(out, "Last activity: %s\n", formatTimestamp(item.UpdatedAt))
				fmt.Fprintf(out, "Cached pages:  %d\n", cached)
				if meta == nil {
					fmt.Fprintln(out, "Progress:      never opened")
					return nil
				}
				fmt.Fprintf(out, "Progress:      page %d of %d (last read %s)\n",
					meta.CurrentPage+1, meta.TotalPages, formatTimestamp(meta.LastRead))
				if meta.DisplayFilter != "" {
					fmt.Fprintf(out, "Display:       %s\n", meta.DisplayFilter)
				}
				return nil
			})
		},
	}
}
