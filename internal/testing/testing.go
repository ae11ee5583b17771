// package testing contains shared testing utilities
package testing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/moviex/internal/services"
)

// SampleCatalog returns a small catalog document:
//
//	1 Alien    1979 Horror, Sci-Fi
//	2 Heat     1995 Crime, Drama
//	3 Aliens   1986 Action, Sci-Fi
func SampleCatalog() *services.CatalogResponse {
	return &services.CatalogResponse{
		Genres: []string{"Action", "Crime", "Drama", "Horror", "Sci-Fi"},
		Movies: []services.RemoteMovie{
			{ID: 1, Title: "Alien", Year: "1979", Runtime: "117", Genres: []string{"Horror", "Sci-Fi"}, Director: "Ridley Scott", PosterURL: "https://example.com/alien.jpg"},
			{ID: 2, Title: "Heat", Year: "1995", Runtime: "170", Genres: []string{"Crime", "Drama"}, Director: "Michael Mann"},
			{ID: 3, Title: "Aliens", Year: "1986", Runtime: "137", Genres: []string{"Action", "Sci-Fi"}, Director: "James Cameron"},
		},
	}
}

// FakeFetcher is a test double for [services.CatalogFetcher] that counts calls.
type FakeFetcher struct {
	mu       sync.Mutex
	Response *services.CatalogResponse
	Err      error
	// Gate, when set, blocks FetchCatalog until it is closed or the context ends.
	Gate  chan struct{}
	calls atomic.Int32
}

func (f *FakeFetcher) FetchCatalog(ctx context.Context) (*services.CatalogResponse, error) {
	f.calls.Add(1)
	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return nil, services.NetworkFailure(ctx.Err())
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Response, nil
}

// Set swaps the response and error returned by later calls.
func (f *FakeFetcher) Set(resp *services.CatalogResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Response, f.Err = resp, err
}

// Calls returns the number of FetchCatalog invocations.
func (f *FakeFetcher) Calls() int {
	return int(f.calls.Load())
}

// NewCatalogServer serves catalog as JSON on every path and counts requests.
func NewCatalogServer(t *testing.T, catalog *services.CatalogResponse) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(catalog); err != nil {
			t.Errorf("failed to encode catalog: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

// MustChdir changes into dir and restores the previous directory on cleanup.
func MustChdir(t *testing.T, dir string) {
	t.Helper()
	prev := MustGetwd(t)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() { os.Chdir(prev) })
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
