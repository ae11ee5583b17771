// Package server exposes the movie catalog as a JSON API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns, so one path may serve several
// methods and wildcards such as {id} are available through [http.Request.PathValue].
//
// # Middleware
//
//   - [Recover] turns handler panics into 500 responses
//   - [RequestID] propagates or assigns X-Request-Id
//   - [Logging] logs one line per request with status and duration
//   - [CORS] wraps go-chi/cors
//   - [RateLimiter] keeps a token bucket per client address
//
// # Routes
//
//	GET    /api/health          liveness and cached movie count
//	GET    /api/movies          ?genre=&q=&limit=&offset=
//	GET    /api/movies/{id}
//	GET    /api/genres
//	GET    /api/wishlist
//	PUT    /api/wishlist/{id}   add to wishlist
//	DELETE /api/wishlist/{id}   remove from wishlist
//	POST   /api/sync            ?force=true ignores the refresh policy
//
// Failures are written as [ErrorResponse] with a stable code; the message is the one the
// catalog produced.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
