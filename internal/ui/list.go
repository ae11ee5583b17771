package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/moviex/internal/formatter"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/sahilm/fuzzy"
)

var (
	_ list.Item = movieItem{}
)

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie      models.Movie
	wishlisted bool
}

func (i movieItem) FilterValue() string { return i.movie.Title }

func (i movieItem) Title() string {
	title := fmt.Sprintf("%s (%s)", i.movie.Title, i.movie.Year)
	if i.wishlisted {
		title += " " + styles.star.Render("♥")
	}
	return title
}

func (i movieItem) Description() string {
	parts := []string{}
	if g := i.movie.GenreLabel(); g != "" {
		parts = append(parts, g)
	}
	if rt := formatter.FormatRuntime(i.movie.Runtime); rt != "" {
		parts = append(parts, rt)
	}
	if i.movie.Director != "" {
		parts = append(parts, i.movie.Director)
	}
	return strings.Join(parts, " • ")
}

// movieItems converts movies, marking those whose id is in wishlisted. The flag on
// the row itself may be stale once the wishlist changes.
func movieItems(movies []models.Movie, wishlisted map[int]bool) []list.Item {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m, wishlisted: wishlisted[m.ID]}
	}
	return items
}

func idSet(movies []models.Movie) map[int]bool {
	set := make(map[int]bool, len(movies))
	for _, m := range movies {
		set[m.ID] = true
	}
	return set
}

// filterGenres returns the genres matching query, best match first. An empty query keeps the catalog order.
func filterGenres(query string, genres []string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]string(nil), genres...)
	}

	lower := make([]string, len(genres))
	for i, g := range genres {
		lower[i] = strings.ToLower(g)
	}

	matches := fuzzy.Find(strings.ToLower(query), lower)
	out := make([]string, len(matches))
	for i, match := range matches {
		out[i] = genres[match.Index]
	}
	return out
}
