package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/desertthunder/moviex/internal/browse"
	"github.com/desertthunder/moviex/internal/formatter"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/urfave/cli/v3"
)

// maxSuggestionDistance bounds how far a typo may be from a genre to be suggested.
const maxSuggestionDistance = 3

// MoviesList prints one page of movies under the optional genre and title filters.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	var genre *string
	if name := strings.TrimSpace(cmd.String("genre")); name != "" {
		genres, err := r.catalog.AllGenres(ctx)
		if err != nil {
			return err
		}
		resolved, err := resolveGenre(name, genres)
		if err != nil {
			return err
		}
		genre = &resolved
	}

	limit := int(cmd.Int("limit"))
	if limit == 0 {
		limit = r.pageSize()
	}
	offset := int(cmd.Int("offset"))

	movies, err := browse.FetchPage(ctx, r.catalog, genre, cmd.String("query"), limit, offset)
	if err != nil {
		return err
	}

	title := "Movies"
	if genre != nil {
		title += " · " + *genre
	}
	if q := strings.TrimSpace(cmd.String("query")); q != "" {
		title += fmt.Sprintf(" · %q", q)
	}
	return r.writeMovies(title, movies, cmd.String("format"), cmd.String("output"))
}

// MoviesShow prints every field of the movie with the given id.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	movie, err := r.catalog.MovieByID(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(movie, true); err != nil {
			return err
		}
	} else {
		r.writePlainHeader(fmt.Sprintf("#%d %s", movie.ID, movie.Title))
		if err := formatter.WriteDetails(r.output, *movie); err != nil {
			return err
		}
	}

	if cmd.Bool("open") {
		if movie.PosterURL == "" {
			return fmt.Errorf("%w: movie %d has no poster", shared.ErrInvalidArgument, id)
		}
		r.logger.Info("opening poster", "url", movie.PosterURL)
		return shared.OpenURL(movie.PosterURL)
	}
	return nil
}

// Genres prints the catalog genres in their stored order.
func (r *Runner) Genres(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	genres, err := r.catalog.AllGenres(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(genres, true)
	}
	for _, g := range genres {
		if err := r.writePlain("%s\n", g); err != nil {
			return err
		}
	}
	return nil
}

// writeMovies renders movies as a table on stdout or as an export, to stdout or a file.
func (r *Runner) writeMovies(title string, movies []models.Movie, format, output string) error {
	if format == "" || format == "table" {
		if output != "" {
			return fmt.Errorf("%w: --output needs an export format", shared.ErrInvalidFlag)
		}
		if len(movies) == 0 {
			return r.writePlain("No movies found\n")
		}
		return formatter.WriteTable(r.output, movies)
	}

	f, err := formatter.ParseFormat(format)
	if err != nil {
		return err
	}

	if output != "" {
		path, err := formatter.WriteExport(f, title, movies, output)
		if err != nil {
			return err
		}
		r.logger.Info("export written", "path", path, "movies", len(movies))
		return r.writePlain("✓ Wrote %d movies to %s\n", len(movies), path)
	}

	data, err := formatter.Export(f, title, movies)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// resolveGenre maps user input onto a stored genre name, ignoring case.
//
// Unknown names fail with the closest genres as suggestions: fuzzy subsequence matches
// first, falling back to edit distance for typos.
func resolveGenre(name string, genres []string) (string, error) {
	for _, g := range genres {
		if strings.EqualFold(g, name) {
			return g, nil
		}
	}

	suggestions := suggestGenres(name, genres)
	if len(suggestions) == 0 {
		return "", fmt.Errorf("%w: unknown genre %q", shared.ErrInvalidArgument, name)
	}
	return "", fmt.Errorf("%w: unknown genre %q (did you mean %s?)", shared.ErrInvalidArgument, name, quoteJoin(suggestions))
}

func suggestGenres(name string, genres []string) []string {
	matches := fuzzy.RankFindFold(name, genres)
	sort.Sort(matches)
	if len(matches) > 0 {
		out := make([]string, 0, len(matches))
		for _, m := range matches {
			out = append(out, m.Target)
		}
		return out
	}

	query := strings.ToLower(name)
	best, bestDist := "", maxSuggestionDistance+1
	for _, g := range genres {
		if d := fuzzy.LevenshteinDistance(query, strings.ToLower(g)); d < bestDist {
			best, bestDist = g, d
		}
	}
	if best == "" {
		return nil
	}
	return []string{best}
}

func quoteJoin(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return strings.Join(quoted, " or ")
}

// parseID validates a movie id argument.
func parseID(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: movie id must be a positive integer, got %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}
