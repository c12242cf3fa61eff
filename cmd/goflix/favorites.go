package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFavoritesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage the favorites list",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List favorite movies",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := loadApp(opts)
				if err != nil {
					return err
				}
				defer app.Shutdown()

				movies, err := app.Favorites.List(cmd.Context())
				if err != nil {
					return err
				}
				return printMovies(cmd.OutOrStdout(), opts.output, movies)
			},
		},
		&cobra.Command{
			Use:   "toggle <id>",
			Short: "Add a movie to favorites, or remove it if already there",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				app, err := loadApp(opts)
				if err != nil {
					return err
				}
				defer app.Shutdown()

				movie, err := app.Catalog.Details(cmd.Context(), id)
				if err != nil {
					return err
				}
				added, err := app.Favorites.Toggle(cmd.Context(), movie)
				if err != nil {
					return err
				}
				if added {
					fmt.Fprintf(cmd.OutOrStdout(), "added %q to favorites\n", movie.Title)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "removed %q from favorites\n", movie.Title)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <id>",
			Short: "Add a movie to favorites (no-op when already there)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				app, err := loadApp(opts)
				if err != nil {
					return err
				}
				defer app.Shutdown()

				movie, err := app.Catalog.Details(cmd.Context(), id)
				if err != nil {
					return err
				}
				added, err := app.Favorites.Add(cmd.Context(), movie)
				if err != nil {
					return err
				}
				if added {
					fmt.Fprintf(cmd.OutOrStdout(), "added %q to favorites\n", movie.Title)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%q is already a favorite\n", movie.Title)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Remove a movie from favorites",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				app, err := loadApp(opts)
				if err != nil {
					return err
				}
				defer app.Shutdown()

				removed, err := app.Favorites.Remove(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("movie %d is not a favorite", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d from favorites\n", id)
				return nil
			},
		},
	)
	return cmd
}
