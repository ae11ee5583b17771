package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviex/internal/cache"
	"github.com/desertthunder/moviex/internal/shared"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://raw.githubusercontent.com/erik-sytnyk/"
	DefaultPath    = "movies-list/master/db.json"
)

// ResponseCache stores catalog responses for conditional requests.
type ResponseCache interface {
	Get(rawURL string) (*cache.Entry, error)
	Put(e *cache.Entry) error
}

// CatalogService fetches the remote catalog document over HTTP.
//
// When a [ResponseCache] is attached, stored validators are replayed as If-None-Match and
// If-Modified-Since, and a 304 is answered from the cached body.
type CatalogService struct {
	baseURL    string
	path       string
	userAgent  string
	httpClient *http.Client
	cache      ResponseCache
	logger     *log.Logger
	maxBytes   int64
}

// NewCatalogService creates a catalog client. Empty arguments fall back to the public catalog and [http.DefaultClient].
func NewCatalogService(baseURL, path string, client *http.Client) *CatalogService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if path == "" {
		path = DefaultPath
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &CatalogService{
		baseURL:    baseURL,
		path:       path,
		userAgent:  "moviex",
		httpClient: client,
		logger:     log.Default(),
		maxBytes:   cache.MaxEntryBytes,
	}
}

// NewHTTPClient builds the client used for catalog requests.
//
// A non-empty token is sent as a bearer credential on every request.
func NewHTTPClient(timeout time.Duration, token string) *http.Client {
	client := &http.Client{Timeout: timeout}
	if token != "" {
		client.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   http.DefaultTransport,
		}
	}
	return client
}

// SetCache attaches a response cache.
func (s *CatalogService) SetCache(c ResponseCache) { s.cache = c }

// SetLogger replaces the logger.
func (s *CatalogService) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

// SetUserAgent overrides the User-Agent header.
func (s *CatalogService) SetUserAgent(ua string) {
	if ua != "" {
		s.userAgent = ua
	}
}

// SetMaxBytes bounds the size of the catalog document. Non-positive values are ignored.
func (s *CatalogService) SetMaxBytes(n int64) {
	if n > 0 {
		s.maxBytes = n
	}
}

// URL returns the catalog document URL.
func (s *CatalogService) URL() string {
	return strings.TrimRight(s.baseURL, "/") + "/" + strings.TrimLeft(s.path, "/")
}

// FetchCatalog performs a single GET of the catalog document.
func (s *CatalogService) FetchCatalog(ctx context.Context) (*CatalogResponse, error) {
	url := s.URL()
	s.logger.Debug("fetching catalog", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, shared.UnexpectedFailure(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	cached := s.cachedEntry(url)
	if cached != nil {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("catalog request failed", "err", err)
		return nil, NetworkFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		s.logger.Debug("catalog not modified, serving cached body", "stored_at", cached.StoredAt)
		return decodeCatalog(cached.Body)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Warn("catalog request rejected", "status", resp.StatusCode)
		return nil, ClassifyStatus(resp.StatusCode, fmt.Errorf("%s %s: %s", req.Method, url, resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, NetworkFailure(fmt.Errorf("failed to read response: %w", err))
	}
	if int64(len(body)) > s.maxBytes {
		return nil, shared.UnexpectedFailure(fmt.Errorf("catalog exceeds %d bytes", s.maxBytes))
	}

	catalog, err := decodeCatalog(body)
	if err != nil {
		return nil, err
	}

	s.storeEntry(url, resp.Header, body)
	s.logger.Debug("catalog fetched", "movies", len(catalog.Movies), "genres", len(catalog.Genres))
	return catalog, nil
}

func (s *CatalogService) cachedEntry(url string) *cache.Entry {
	if s.cache == nil {
		return nil
	}
	e, err := s.cache.Get(url)
	if err != nil {
		s.logger.Warn("response cache read failed", "err", err)
		return nil
	}
	if e == nil || !e.Validated() {
		return nil
	}
	return e
}

func (s *CatalogService) storeEntry(url string, h http.Header, body []byte) {
	if s.cache == nil {
		return
	}
	e := &cache.Entry{
		URL:          url,
		ETag:         h.Get("ETag"),
		LastModified: h.Get("Last-Modified"),
		Body:         body,
	}
	if !e.Validated() {
		return
	}
	if err := s.cache.Put(e); err != nil {
		s.logger.Warn("response cache write failed", "err", err)
	}
}

func decodeCatalog(body []byte) (*CatalogResponse, error) {
	var catalog CatalogResponse
	if err := json.Unmarshal(body, &catalog); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			err = fmt.Errorf("malformed catalog at offset %d: %w", syntaxErr.Offset, err)
		}
		return nil, shared.UnexpectedFailure(err)
	}

	if catalog.Genres == nil {
		catalog.Genres = []string{}
	}
	if catalog.Movies == nil {
		catalog.Movies = []RemoteMovie{}
	}
	return &catalog, nil
}
