// Package browse holds the session state behind the movie screens: the paginated
// and filtered movie list, the wishlist, a single movie's details and the first
// launch check.
//
// Holders are safe for concurrent use. Queries run outside the holder's lock, so a
// caller may change filters while a page is loading; the stale page is discarded
// when it arrives.
package browse
