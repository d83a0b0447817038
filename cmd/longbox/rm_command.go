package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"longbox/internal/library"
	"longbox/internal/store"
)

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm COMIC...",
		Aliases: []string{"remove"},
		Short:   "Remove comics from the library",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(svc *library.Service, _ *store.Store) error {
				out := cmd.OutOrStdout()
				for _, arg := range args {
					item, err := resolveComicID(cmd.Context(), svc, arg)
					if err != nil {
						return err
					}
					if err := svc.Delete(cmd.Context(), item.ID); err != nil {
						return fmt.Errorf("remove %s: %w", item.ID, err)
					}
					fmt.Fprintf(out, "Removed %s (%s)\n", item.Name, item.ID)
				}
				return nil
			})
		},
	}
}
