// Package services implements the remote side of the movie catalog.
//
// # Catalog client
//
// [CatalogService] performs a single GET of the catalog document and decodes its
// genres and movies. It can carry a bearer token (via [oauth2.Transport]) and a
// persistent [ResponseCache] that turns repeat fetches into conditional requests.
//
// # Error Handling
//
// Every failure is a [*shared.Failure]:
//   - HTTP status codes map to fixed messages through [ClassifyStatus]; Code holds the status
//   - requests that never produced a response become [NetworkFailure]
//   - anything else (malformed JSON, bad request construction) is [shared.UnexpectedFailure]
//
// The original error is always kept as the failure's cause.
//
// # Connectivity
//
// [DialChecker] answers [ConnectivityChecker] by dialing the catalog host.
package services
