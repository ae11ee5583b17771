// Package models defines the catalog entities shared by every layer of moviex.
//
// The package contains three categories of types:
//
// 1. Data Transfer Objects (DTOs): plain structs handed to callers and surfaces
//   - [Movie] : catalog entry with its ordered genre list and wishlist flag
//
// 2. Persistent Entities: the storage form of catalog data
//   - [PersistedMovie] : validated movie row written by sync and mutated only by wishlist updates
//
// 3. Outcomes: [Result] wraps the tri-state (success, error, loading) value every
// query facade and state holder reports.
//
// The [MovieStore], [GenreStore] and [SyncStateStore] interfaces describe the local store
// that the sync engine and query facade depend on.
package models
