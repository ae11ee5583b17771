// Package repositories implements SQLite persistence for the movie catalog.
//
// Key Implementations:
//   - [MovieRepository] : movie rows, their ordered genre lists, paginated and filtered listings, and the wishlist flag
//   - [GenreRepository] : the catalog's genre names in insertion order
//   - [SyncStateRepository] : bookkeeping for the last successful sync
//
// Every listing orders by year descending with id ascending as the tie-break, so pages are
// deterministic. Genres live in the movie_genres table keyed by (movie_id, position); genre
// filters are exact membership tests on that table rather than substring matches.
//
// Writes are serialized by a per-repository mutex. Reads run concurrently.
package repositories
