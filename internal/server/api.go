package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviex/internal/browse"
	"github.com/desertthunder/moviex/internal/catalog"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/tasks"
)

// MaxPageSize caps the limit a client may request.
const MaxPageSize = 100

// Catalog is the facade served by the API.
type Catalog interface {
	catalog.Repository
	ForceSync(ctx context.Context, progress chan<- tasks.ProgressUpdate) models.Result[tasks.SyncReport]
}

// MoviesResponse is a page of movies. NextOffset is the offset of the following page.
type MoviesResponse struct {
	Movies     []models.Movie `json:"movies"`
	Genre      *string        `json:"genre,omitempty"`
	Query      string         `json:"query,omitempty"`
	Limit      int            `json:"limit"`
	Offset     int            `json:"offset"`
	NextOffset int            `json:"next_offset"`
}

// WishlistResponse lists flagged movies.
type WishlistResponse struct {
	Movies []models.Movie `json:"movies"`
	Count  int            `json:"count"`
}

// WishlistUpdate reports the result of a wishlist write.
type WishlistUpdate struct {
	ID            int  `json:"id"`
	InWishlist    bool `json:"in_wishlist"`
	WishlistCount int  `json:"wishlist_count"`
}

// API serves the catalog over JSON.
type API struct {
	catalog  Catalog
	pageSize int
	logger   *log.Logger
}

// NewAPI creates the handlers. A non-positive pageSize uses [browse.DefaultPageSize].
func NewAPI(c Catalog, pageSize int, logger *log.Logger) *API {
	if pageSize <= 0 {
		pageSize = browse.DefaultPageSize
	}
	if logger == nil {
		logger = log.Default()
	}
	return &API{catalog: c, pageSize: pageSize, logger: logger}
}

// Register mounts every API route on r.
func (a *API) Register(r Router) {
	r.Handler(&HealthHandler{catalog: a.catalog})
	r.Handle(http.MethodGet, "/api/movies", http.HandlerFunc(a.listMovies))
	r.Handle(http.MethodGet, "/api/movies/{id}", http.HandlerFunc(a.getMovie))
	r.Handle(http.MethodGet, "/api/genres", http.HandlerFunc(a.listGenres))
	r.Handle(http.MethodGet, "/api/wishlist", http.HandlerFunc(a.listWishlist))
	r.Handle(http.MethodPut, "/api/wishlist/{id}", a.setWishlist(true))
	r.Handle(http.MethodDelete, "/api/wishlist/{id}", a.setWishlist(false))
	r.Handle(http.MethodPost, "/api/sync", http.HandlerFunc(a.sync))
}

// NewRouter builds a [BasicRouter] with the standard middleware stack and the API mounted.
//
// CORS wraps the whole router so preflight requests are answered before method routing.
func NewRouter(c Catalog, cfg shared.ServerConfig, pageSize int, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	r := NewBasicRouter()
	r.Use(Recover(logger), RequestID(), Logging(logger))
	if cfg.RateLimit > 0 {
		rl := NewRateLimiter(cfg.RateLimit, cfg.Burst)
		if trusted, err := shared.ParseTrustedProxies(cfg.TrustedProxies); err != nil {
			logger.Warn("ignoring trusted proxies", "err", err)
		} else {
			rl.TrustProxies(trusted)
		}
		r.Use(rl.Middleware)
	}
	NewAPI(c, pageSize, logger).Register(r)
	return CORS(cfg.AllowedOrigins)(r)
}

// HealthHandler reports liveness and the number of cached movies.
type HealthHandler struct {
	catalog catalog.Repository
}

func (h *HealthHandler) Routes() []string {
	return []string{"GET /api/health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, err := h.catalog.TotalMovieCount(r.Context())
	if err != nil {
		WriteFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "movies": n})
}

func (a *API) listMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"), a.pageSize)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeBadRequest, "limit: "+err.Error())
		return
	}
	if limit == 0 {
		WriteError(w, r, http.StatusBadRequest, CodeBadRequest, "limit: must be positive")
		return
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeBadRequest, "offset: "+err.Error())
		return
	}

	var genre *string
	if g := strings.TrimSpace(q.Get("genre")); g != "" {
		genre = &g
	}
	query := strings.TrimSpace(q.Get("q"))

	movies, err := browse.FetchPage(r.Context(), a.catalog, genre, query, limit, offset)
	if err != nil {
		WriteFailure(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, MoviesResponse{
		Movies:     movies,
		Genre:      genre,
		Query:      query,
		Limit:      limit,
		Offset:     offset,
		NextOffset: offset + limit,
	})
}

func (a *API) getMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	movie, err := a.catalog.MovieByID(r.Context(), id)
	if err != nil {
		WriteFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, movie)
}

func (a *API) listGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := a.catalog.AllGenres(r.Context())
	if err != nil {
		WriteFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string][]string{"genres": genres})
}

func (a *API) listWishlist(w http.ResponseWriter, r *http.Request) {
	movies, err := a.catalog.Wishlist(r.Context())
	if err != nil {
		WriteFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, WishlistResponse{Movies: movies, Count: len(movies)})
}

// setWishlist writes the flag. Unknown ids are reported as 404 rather than ignored.
func (a *API) setWishlist(flag bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		ctx := r.Context()

		if _, err := a.catalog.MovieByID(ctx, id); err != nil {
			WriteFailure(w, r, err)
			return
		}
		if err := a.catalog.UpdateWishlistStatus(ctx, id, flag); err != nil {
			WriteFailure(w, r, err)
			return
		}
		count, err := a.catalog.WishlistCount(ctx)
		if err != nil {
			WriteFailure(w, r, err)
			return
		}

		a.logger.Debug("wishlist updated", "id", id, "flag", flag, "request_id", RequestIDFromContext(ctx))
		WriteJSON(w, http.StatusOK, WishlistUpdate{ID: id, InWishlist: flag, WishlistCount: count})
	})
}

// sync runs the coordinator; ?force=true refreshes regardless of policy.
func (a *API) sync(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	var result models.Result[tasks.SyncReport]
	if force {
		result = a.catalog.ForceSync(r.Context(), nil)
	} else {
		result = a.catalog.SyncIfNeeded(r.Context())
	}

	switch {
	case result.IsLoading():
		WriteError(w, r, http.StatusConflict, CodeConflict, shared.ErrSyncInProgress.Error())
	case result.IsError():
		WriteFailure(w, r, result.Failure())
	default:
		report, _ := result.Data()
		WriteJSON(w, http.StatusOK, report)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, CodeBadRequest, fmt.Sprintf("invalid movie id %q", raw))
		return 0, false
	}
	return id, true
}

// intParam parses a non-negative integer, returning def when raw is empty.
func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return n, nil
}
