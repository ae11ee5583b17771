// Package tasks runs the long-lived operations of moviex with progress reporting.
//
// # Catalog Sync
//
// [SyncEngine] copies the remote catalog into the local store:
//
//  1. Count local movies. Under the cache-forever policy a non-empty store ends the run
//     successfully without contacting the remote.
//  2. Fetch the catalog through a [services.CatalogFetcher].
//  3. Map remote records to storage records with the wishlist flag cleared, then insert
//     movies and genres, each batch in one transaction.
//
// Under the ttl policy a non-empty store is refreshed once its last sync is older than
// the TTL, and wishlist flags already set locally are carried onto the new rows.
// The engine moves through [Idle], [Syncing], [Synced] and [Failed]; a failed engine
// is retried by running it again. Concurrent calls return a loading result.
//
// # Poster Downloads
//
// [DownloadPosters] fetches poster images with a worker pool throttled by a shared
// [rate.Limiter]. Failures are reported per movie.
//
// # Progress Reporting
//
// Both operations accept an optional channel of [ProgressUpdate]. Sends never block:
// updates are dropped when the channel is full.
package tasks
