package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/moviex/internal/cache"
	"github.com/desertthunder/moviex/internal/shared"
)

const catalogJSON = `{
	"genres": ["Comedy", "Drama"],
	"movies": [
		{"id": 1, "title": "A", "year": "2020", "runtime": "90", "genres": ["Action"], "director": "D", "actors": "X, Y", "plot": "P", "posterUrl": "https://example.com/a.jpg"},
		{"id": 2, "title": "B", "year": "2021", "runtime": "100", "genres": ["Drama", "Comedy"]}
	]
}`

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func asFailure(t *testing.T, err error) *shared.Failure {
	t.Helper()
	var f *shared.Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *shared.Failure, got %T: %v", err, err)
	}
	return f
}

func TestCatalogService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			srv := NewCatalogService("", "", nil)

			if srv.URL() != "https://raw.githubusercontent.com/erik-sytnyk/movies-list/master/db.json" {
				t.Errorf("unexpected default url %s", srv.URL())
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			client := &http.Client{}
			srv := NewCatalogService("http://example.com/", "/db.json", client)

			if srv.URL() != "http://example.com/db.json" {
				t.Errorf("expected http://example.com/db.json, got %s", srv.URL())
			}
			if srv.httpClient != client {
				t.Error("expected custom client to be used")
			}
		})
	})

	t.Run("FetchCatalog", func(t *testing.T) {
		t.Run("Decodes Document", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/movies/db.json" {
					t.Errorf("expected path /movies/db.json, got %s", r.URL.Path)
				}
				if r.Header.Get("User-Agent") != "moviex-test" {
					t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
				}
				w.Write([]byte(catalogJSON))
			}))
			defer server.Close()

			srv := NewCatalogService(server.URL, "movies/db.json", nil)
			srv.SetUserAgent("moviex-test")

			catalog, err := srv.FetchCatalog(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(catalog.Genres) != 2 || len(catalog.Movies) != 2 {
				t.Fatalf("unexpected catalog %+v", catalog)
			}

			m := catalog.Movies[0].ToMovie()
			if m.ID != 1 || m.PosterURL != "https://example.com/a.jpg" || m.Actors != "X, Y" || m.InWishlist {
				t.Errorf("unexpected movie %+v", m)
			}
			if got := catalog.Movies[1].Genres; got[0] != "Drama" || got[1] != "Comedy" {
				t.Errorf("expected genre order preserved, got %v", got)
			}
		})

		t.Run("Missing Arrays Decode Empty", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			catalog, err := NewCatalogService(server.URL, "db.json", nil).FetchCatalog(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if catalog.Genres == nil || catalog.Movies == nil {
				t.Error("expected non-nil empty slices")
			}
		})

		t.Run("Status Classification", func(t *testing.T) {
			tc := []struct {
				status int
				want   string
			}{
				{400, "Bad Request – The server could not understand your request."},
				{401, "Unauthorized – Please check your credentials."},
				{403, "Forbidden – You don't have access to this resource."},
				{404, "Not Found – The requested resource doesn't exist."},
				{408, "Request Timeout – The server timed out waiting for the request."},
				{409, "Conflict – Duplicate or conflicting resource."},
				{422, "Unprocessable Entity – Validation failed on submitted data."},
				{429, "Too Many Requests – You're being rate limited."},
				{500, "Internal Server Error – Something went wrong on the server."},
				{502, "Bad Gateway – Invalid response from the upstream server."},
				{503, "Service Unavailable – The server is temporarily unavailable."},
				{504, "Gateway Timeout – The server didn't respond in time."},
				{418, "HTTP 418 – Unexpected server error."},
				{501, "HTTP 501 – Unexpected server error."},
			}

			for _, tt := range tc {
				t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
					server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						w.WriteHeader(tt.status)
					}))
					defer server.Close()

					_, err := NewCatalogService(server.URL, "db.json", nil).FetchCatalog(context.Background())
					f := asFailure(t, err)
					if f.Message != tt.want {
						t.Errorf("expected %q, got %q", tt.want, f.Message)
					}
					if f.Code != tt.status {
						t.Errorf("expected code %d, got %d", tt.status, f.Code)
					}
					if f.Cause == nil {
						t.Error("expected cause to be preserved")
					}
				})
			}
		})

		t.Run("Transport Failure", func(t *testing.T) {
			cause := errors.New("connection refused")
			client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
				return nil, cause
			})}

			_, err := NewCatalogService("http://example.com", "db.json", client).FetchCatalog(context.Background())
			f := asFailure(t, err)
			if f.Message != NetworkMessage || f.HasCode() {
				t.Errorf("unexpected failure %+v", f)
			}
			if !errors.Is(err, cause) {
				t.Error("expected cause to be preserved")
			}
		})

		t.Run("Body Read Failure", func(t *testing.T) {
			client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: 200, Body: io.NopCloser(failingReader{}), Header: http.Header{}}, nil
			})}

			_, err := NewCatalogService("http://example.com", "db.json", client).FetchCatalog(context.Background())
			if f := asFailure(t, err); f.Message != NetworkMessage {
				t.Errorf("expected network failure, got %q", f.Message)
			}
		})

		t.Run("Malformed JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"movies": [`))
			}))
			defer server.Close()

			_, err := NewCatalogService(server.URL, "db.json", nil).FetchCatalog(context.Background())
			f := asFailure(t, err)
			if !strings.HasPrefix(f.Message, "Unexpected Error – ") {
				t.Errorf("expected unexpected failure, got %q", f.Message)
			}
		})

		t.Run("Oversized Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"genres": ["Drama"], "movies": []}`))
			}))
			defer server.Close()

			svc := NewCatalogService(server.URL, "db.json", nil)
			svc.SetMaxBytes(10)

			_, err := svc.FetchCatalog(context.Background())
			f := asFailure(t, err)
			if !strings.Contains(f.Message, "catalog exceeds 10 bytes") {
				t.Errorf("expected size failure, got %q", f.Message)
			}

			svc.SetMaxBytes(1024)
			if _, err := svc.FetchCatalog(context.Background()); err != nil {
				t.Errorf("expected no error under the limit, got %v", err)
			}
		})

		t.Run("Bad Request Construction", func(t *testing.T) {
			_, err := NewCatalogService("http://example.com", "db\x00.json", nil).FetchCatalog(context.Background())
			f := asFailure(t, err)
			if !strings.HasPrefix(f.Message, "Unexpected Error – failed to create request") {
				t.Errorf("unexpected message %q", f.Message)
			}
		})

		t.Run("Bearer Token", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer secret" {
					t.Errorf("expected bearer header, got %q", got)
				}
				w.Write([]byte(catalogJSON))
			}))
			defer server.Close()

			client := NewHTTPClient(5*time.Second, "secret")
			if _, err := NewCatalogService(server.URL, "db.json", client).FetchCatalog(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Conditional Request From Cache", func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				if r.Header.Get("If-None-Match") == `"v1"` {
					w.WriteHeader(http.StatusNotModified)
					return
				}
				w.Header().Set("ETag", `"v1"`)
				w.Write([]byte(catalogJSON))
			}))
			defer server.Close()

			rc, err := cache.Open("")
			if err != nil {
				t.Fatalf("failed to open cache: %v", err)
			}
			srv := NewCatalogService(server.URL, "db.json", nil)
			srv.SetCache(rc)

			first, err := srv.FetchCatalog(context.Background())
			if err != nil {
				t.Fatalf("first fetch failed: %v", err)
			}
			second, err := srv.FetchCatalog(context.Background())
			if err != nil {
				t.Fatalf("second fetch failed: %v", err)
			}

			if hits.Load() != 2 {
				t.Errorf("expected 2 requests, got %d", hits.Load())
			}
			if len(second.Movies) != len(first.Movies) {
				t.Errorf("expected cached body to be served, got %d movies", len(second.Movies))
			}
		})
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestDialChecker(t *testing.T) {
	t.Run("Address", func(t *testing.T) {
		tc := []struct{ url, want string }{
			{"https://raw.githubusercontent.com/erik-sytnyk/", "raw.githubusercontent.com:443"},
			{"http://localhost:8080/db.json", "localhost:8080"},
			{"http://example.com", "example.com:80"},
			{"::not a url", "raw.githubusercontent.com:443"},
		}
		for _, tt := range tc {
			if got := NewDialChecker(tt.url, time.Second).Address(); got != tt.want {
				t.Errorf("NewDialChecker(%q).Address() = %s, want %s", tt.url, got, tt.want)
			}
		}
	})

	t.Run("Reachable", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		defer ln.Close()

		c := NewDialChecker("http://"+ln.Addr().String(), time.Second)
		if !c.HasConnectivity(context.Background()) {
			t.Error("expected connectivity")
		}
	})

	t.Run("Unreachable", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		addr := ln.Addr().String()
		ln.Close()

		c := NewDialChecker("http://"+addr, 500*time.Millisecond)
		if c.HasConnectivity(context.Background()) {
			t.Error("expected no connectivity")
		}
	})

	t.Run("StaticChecker", func(t *testing.T) {
		if !StaticChecker(true).HasConnectivity(context.Background()) || StaticChecker(false).HasConnectivity(context.Background()) {
			t.Error("StaticChecker should echo its value")
		}
	})
}
