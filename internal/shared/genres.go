package shared

import "strings"

// GenreSeparator joins genre names into a single text field.
const GenreSeparator = ","

// JoinGenres encodes an ordered genre list as one comma-joined string.
//
// Names containing a comma cannot be recovered by [SplitGenres]; the store keeps
// genres in their own table, so this encoding is only used for export.
func JoinGenres(genres []string) string {
	return strings.Join(genres, GenreSeparator)
}

// SplitGenres decodes a comma-joined string, trimming whitespace around each name.
// Blank input yields an empty (non-nil) slice.
func SplitGenres(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return []string{}
	}

	parts := strings.Split(joined, GenreSeparator)
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		genres = append(genres, strings.TrimSpace(p))
	}
	return genres
}
