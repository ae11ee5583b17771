// package formatter renders movie lists to various formats (CSV, Markdown, JSON, plain text)
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatText     Format = "txt"
)

// maxPosterBytes bounds a single poster download.
const maxPosterBytes = 10 << 20

// ParseFormat accepts a format name or a common alias ("markdown", "text").
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, name)
	}
}

// ExportToCSV converts movies to CSV with columns: ID, Title, Year, Runtime, Genres, Director, Actors, Wishlist
func ExportToCSV(movies []models.Movie) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "Runtime", "Genres", "Director", "Actors", "Wishlist"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range movies {
		record := []string{
			strconv.Itoa(m.ID),
			m.Title,
			m.Year,
			m.Runtime,
			shared.JoinGenres(m.Genres),
			m.Director,
			m.Actors,
			strconv.FormatBool(m.InWishlist),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders movies as a Markdown document headed by title.
func ExportToMarkdown(title string, movies []models.Movie) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Movies**: %d\n\n", len(movies))

	for _, m := range movies {
		marker := ""
		if m.InWishlist {
			marker = " ★"
		}
		fmt.Fprintf(&buf, "## %s (%s)%s\n\n", m.Title, m.Year, marker)

		if m.PosterURL != "" {
			fmt.Fprintf(&buf, "![Poster](%s)\n\n", m.PosterURL)
		}
		if len(m.Genres) > 0 {
			fmt.Fprintf(&buf, "**Genres**: %s\n", strings.Join(m.Genres, ", "))
		}
		if rt := FormatRuntime(m.Runtime); rt != "" {
			fmt.Fprintf(&buf, "**Runtime**: %s\n", rt)
		}
		if m.Director != "" {
			fmt.Fprintf(&buf, "**Director**: %s\n", m.Director)
		}
		if m.Actors != "" {
			fmt.Fprintf(&buf, "**Cast**: %s\n", m.Actors)
		}
		if m.Plot != "" {
			fmt.Fprintf(&buf, "\n%s\n", m.Plot)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText renders movies as a numbered plain text list.
func ExportToText(title string, movies []models.Movie) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", title)
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(movies))

	for i, m := range movies {
		fmt.Fprintf(&buf, "%d. %s (%s)", i+1, m.Title, m.Year)
		if len(m.Genres) > 0 {
			fmt.Fprintf(&buf, " [%s]", m.GenreLabel())
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders movies as an indented JSON array.
func ExportToJSON(movies []models.Movie) ([]byte, error) {
	if movies == nil {
		movies = []models.Movie{}
	}
	data, err := json.MarshalIndent(movies, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal movies: %w", err)
	}
	return append(data, '\n'), nil
}

// Export renders movies in the given format.
func Export(format Format, title string, movies []models.Movie) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(movies)
	case FormatMarkdown:
		return ExportToMarkdown(title, movies)
	case FormatJSON:
		return ExportToJSON(movies)
	case FormatText:
		return ExportToText(title, movies)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport writes movies to filepath in the given format.
//
// Defaults to movies.{format} as the filename.
func WriteExport(format Format, title string, movies []models.Movie, filepath string) (string, error) {
	if filepath == "" {
		filepath = "movies." + string(format)
	}

	data, err := Export(format, title, movies)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return filepath, nil
}

// WriteTable prints movies as aligned columns.
func WriteTable(w io.Writer, movies []models.Movie) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, "ID\tTITLE\tYEAR\tGENRES\t♥"); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}
	for _, m := range movies {
		mark := ""
		if m.InWishlist {
			mark = "♥"
		}
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", m.ID, m.Title, m.Year, m.GenreLabel(), mark); err != nil {
			return fmt.Errorf("failed to write table row: %w", err)
		}
	}
	return tw.Flush()
}

// WriteDetails prints every field of a single movie.
func WriteDetails(w io.Writer, m models.Movie) error {
	fields := []struct{ label, value string }{
		{"Title", m.Title},
		{"Year", m.Year},
		{"Runtime", FormatRuntime(m.Runtime)},
		{"Genres", strings.Join(m.Genres, ", ")},
		{"Director", m.Director},
		{"Actors", m.Actors},
		{"Poster", m.PosterURL},
		{"Wishlist", shared.YesNo(m.InWishlist)},
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", f.label, f.value); err != nil {
			return fmt.Errorf("failed to write details: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if m.Plot != "" {
		if _, err := fmt.Fprintf(w, "\n%s\n", m.Plot); err != nil {
			return fmt.Errorf("failed to write plot: %w", err)
		}
	}
	return nil
}

// FormatRuntime renders a runtime in minutes as "2h 17m". Non-numeric values are returned as-is.
func FormatRuntime(runtime string) string {
	minutes, err := strconv.Atoi(strings.TrimSpace(runtime))
	if err != nil || minutes <= 0 {
		return runtime
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// DownloadPoster downloads a poster image and returns the raw bytes
func DownloadPoster(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download poster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download poster: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPosterBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read poster data: %w", err)
	}
	if len(data) > maxPosterBytes {
		return nil, fmt.Errorf("poster exceeds %d bytes", maxPosterBytes)
	}

	return data, nil
}

// PosterFilename derives a stable file name such as "3-aliens.jpg" for a movie's poster.
func PosterFilename(m models.Movie) string {
	ext := ".jpg"
	if u, err := url.Parse(m.PosterURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e == ".png" || e == ".jpeg" || e == ".gif" || e == ".webp" {
			ext = e
		}
	}

	slug := slugify(m.Title)
	if slug == "" {
		return fmt.Sprintf("%d%s", m.ID, ext)
	}
	return fmt.Sprintf("%d-%s%s", m.ID, slug, ext)
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
