package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/bassista/go_flix/internal/model"
	"github.com/spf13/cobra"
)

func newTrendingCmd(opts *rootOptions) *cobra.Command {
	var (
		limit   int
		refresh bool
	)
	cmd := &cobra.Command{
		Use:   "trending",
		Short: "List trending movies of the day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer app.Shutdown()

			load := app.Catalog.Trending
			if refresh {
				load = app.Catalog.RefreshTrending
			}
			movies, err := load(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printMovies(cmd.OutOrStdout(), opts.output, movies)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of movies")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch the list even when a cached copy is fresh")
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var pages int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search movies by title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer app.Shutdown()

			feed := app.Catalog.SearchFeed(args[0])
			for i := 0; i < max(pages, 1); i++ {
				if i > 0 && !feed.HasMore() {
					break
				}
				if _, err := feed.LoadMore(cmd.Context()); err != nil {
					return err
				}
			}
			return printMovies(cmd.OutOrStdout(), opts.output, feed.Items())
		},
	}
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "number of result pages to load")
	return cmd
}

func newMovieCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "movie <id>",
		Short: "Show a movie with cast, crew, genres and trailer",
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

			d, err := app.Catalog.Detail(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return writeJSON(out, d)
			}

			fmt.Fprintf(out, "%s (%s)\n", d.Movie.Title, d.Released)
			if d.Movie.Tagline != "" {
				fmt.Fprintf(out, "%s\n", d.Movie.Tagline)
			}
			fmt.Fprintf(out, "Rating: %.1f  Runtime: %s  Genres: %v\n", d.Movie.VoteAverage, d.Runtime, d.Genres)
			fmt.Fprintf(out, "Poster: %s\n", app.Client.ImageURL(d.Movie.PosterPath, ""))
			if d.TrailerKey != "" {
				fmt.Fprintf(out, "Trailer: https://www.youtube.com/watch?v=%s\n", d.TrailerKey)
			}
			for _, c := range d.Cast {
				fmt.Fprintf(out, "  cast: %s as %s\n", c.Name, c.Character)
			}
			for _, c := range d.Crew {
				fmt.Fprintf(out, "  crew: %s (%s)\n", c.Name, c.Job)
			}
			fmt.Fprintf(out, "\n%s\n", d.Movie.Overview)
			return nil
		},
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie id %q", s)
	}
	return id, nil
}

func printMovies(w io.Writer, format string, movies []model.Movie) error {
	if format == "json" {
		return writeJSON(w, movies)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tRELEASED\tRATING")
	for _, m := range movies {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\n", m.ID, m.Title, m.ReleaseDate, m.VoteAverage)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
