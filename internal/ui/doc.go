// Package ui implements an interactive terminal movie browser using bubbletea's Elm architecture.
//
// Views:
//  1. [StartupView] : Launch check; offers a retry when the catalog is empty and offline
//  2. [ListView] : Paginated movie list, loading the next page when the cursor reaches the end
//  3. [SearchView] : Title search input (/)
//  4. [GenreView] : Fuzzy-filtered genre picker (g)
//  5. [DetailsView] : A single movie with its wishlist status
//  6. [WishlistView] : Wishlisted movies (tab)
//  7. [SyncView] : Forced catalog refresh with live progress (S)
//
// The [Model] delegates all state to the browse holders and re-renders from their
// snapshots whenever a command completes; commands report back through the Msg union.
// Sync progress flows through a channel, as in the worker tasks.
package ui
