package tasks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/desertthunder/moviex/internal/models"
	th "github.com/desertthunder/moviex/internal/testing"
)

func posterServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("poster:" + r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadPosters(t *testing.T) {
	t.Run("Saves Skips And Reports Failures", func(t *testing.T) {
		srv := posterServer(t)
		dir := filepath.Join(t.TempDir(), "posters")

		movies := []models.Movie{
			{ID: 1, Title: "Alien", PosterURL: srv.URL + "/alien.jpg"},
			{ID: 2, Title: "Heat"},
			{ID: 3, Title: "Aliens", PosterURL: srv.URL + "/missing.jpg"},
			{ID: 4, Title: "Ronin", PosterURL: srv.URL + "/ronin.png"},
		}
		progress := make(chan ProgressUpdate, 10)

		result, err := DownloadPosters(context.Background(), progress, movies, PosterOpts{
			OutputDir:  dir,
			NumWorkers: 2,
			RateLimit:  100,
			Client:     srv.Client(),
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Total != 3 || result.Saved != 2 || result.Failed != 1 || result.Skipped != 1 {
			t.Errorf("unexpected counts %+v", result)
		}

		th.AssertDirExists(t, dir)
		th.AssertFileExists(t, filepath.Join(dir, "1-alien.jpg"))
		th.AssertFileExists(t, filepath.Join(dir, "4-ronin.png"))
		if got := th.MustReadFile(t, filepath.Join(dir, "1-alien.jpg")); got != "poster:/alien.jpg" {
			t.Errorf("unexpected poster content %q", got)
		}
		if _, err := os.Stat(filepath.Join(dir, "3-aliens.jpg")); !os.IsNotExist(err) {
			t.Error("failed poster should not be written")
		}

		var failed []int
		for _, r := range result.Results {
			if r.Error != nil {
				failed = append(failed, r.MovieID)
			}
		}
		sort.Ints(failed)
		if len(failed) != 1 || failed[0] != 3 {
			t.Errorf("expected movie 3 to fail, got %v", failed)
		}

		close(progress)
		n := 0
		for u := range progress {
			if u.Phase != PosterDownload {
				t.Errorf("unexpected phase %v", u.Phase)
			}
			n++
		}
		if n != 3 {
			t.Errorf("expected 3 progress updates, got %d", n)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		th.MustChdir(t, t.TempDir())

		result, err := DownloadPosters(context.Background(), nil, nil, PosterOpts{NumWorkers: 50})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.OutputDir != "posters" || result.Total != 0 {
			t.Errorf("unexpected result %+v", result)
		}
		th.AssertDirExists(t, "posters")
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		srv := posterServer(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		movies := []models.Movie{{ID: 1, Title: "Alien", PosterURL: srv.URL + "/alien.jpg"}}
		result, err := DownloadPosters(ctx, nil, movies, PosterOpts{OutputDir: t.TempDir()})
		if err == nil {
			t.Error("expected context error")
		}
		if result == nil || result.Saved != 0 {
			t.Errorf("expected nothing saved, got %+v", result)
		}
	})

	t.Run("Invalid Output Directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := DownloadPosters(context.Background(), nil, nil, PosterOpts{OutputDir: filepath.Join(file, "sub")}); err == nil {
			t.Error("expected directory creation error")
		}
	})
}
