package shared

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestGenreCodec(t *testing.T) {
	tc := []struct {
		name   string
		genres []string
		want   []string
	}{
		{name: "single", genres: []string{"Drama"}, want: []string{"Drama"}},
		{name: "ordered", genres: []string{"Comedy", "Action", "Drama"}, want: []string{"Comedy", "Action", "Drama"}},
		{name: "padded", genres: []string{" Sci-Fi ", "Crime"}, want: []string{"Sci-Fi", "Crime"}},
		{name: "empty", genres: []string{}, want: []string{}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitGenres(JoinGenres(tt.genres))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitGenres(JoinGenres(%q)) = %q, want %q", tt.genres, got, tt.want)
			}
		})
	}

	t.Run("comma inside a name does not round-trip", func(t *testing.T) {
		got := SplitGenres(JoinGenres([]string{"Action, Adventure"}))
		if len(got) != 2 {
			t.Errorf("expected the name to split into 2 parts, got %q", got)
		}
	})

	t.Run("join keeps order", func(t *testing.T) {
		if got := JoinGenres([]string{"B", "A"}); got != "B,A" {
			t.Errorf("expected B,A, got %s", got)
		}
	})
}

func TestFailure(t *testing.T) {
	t.Run("unwraps cause", func(t *testing.T) {
		cause := fmt.Errorf("disk full")
		f := StorageFailure(cause)

		if !errors.Is(f, cause) {
			t.Error("expected failure to unwrap to its cause")
		}
		if f.Message != "Storage Error – disk full" {
			t.Errorf("unexpected message: %s", f.Message)
		}
		if f.HasCode() {
			t.Error("storage failure should not carry a code")
		}
	})

	t.Run("AsFailure keeps existing failures", func(t *testing.T) {
		orig := &Failure{Message: "404 Not Found", Code: 404}
		wrapped := fmt.Errorf("loading: %w", orig)

		if got := AsFailure(wrapped); got != orig {
			t.Errorf("expected the original failure, got %v", got)
		}
	})

	t.Run("AsFailure wraps plain errors", func(t *testing.T) {
		got := AsFailure(errors.New(""))
		if got.Message != "Unexpected Error – Unknown error occurred." {
			t.Errorf("unexpected message: %s", got.Message)
		}
	})

	t.Run("AsFailure nil", func(t *testing.T) {
		if AsFailure(nil) != nil {
			t.Error("expected nil")
		}
	})
}

func TestLogging(t *testing.T) {
	t.Run("ParseLogLevel", func(t *testing.T) {
		tc := []struct {
			in      string
			want    log.Level
			wantErr bool
		}{
			{in: "", want: log.InfoLevel},
			{in: "debug", want: log.DebugLevel},
			{in: "WARN", want: log.WarnLevel},
			{in: "loud", wantErr: true},
		}
		for _, tt := range tc {
			got, err := ParseLogLevel(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("ParseLogLevel(%q) expected ErrInvalidConfig, got %v", tt.in, err)
				}
				continue
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "sync")
		logger.Info("started")

		if !strings.Contains(buf.String(), "component=sync") {
			t.Errorf("expected component field in output, got %q", buf.String())
		}
	})

	t.Run("GenerateID", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == b || len(a) != 36 {
			t.Errorf("expected distinct uuids, got %s and %s", a, b)
		}
	})
}

func TestOpenURL(t *testing.T) {
	for _, link := range []string{"", "ftp://example.com/a.jpg", "/local/path", "https://"} {
		if err := OpenURL(link); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("OpenURL(%q) expected ErrInvalidArgument, got %v", link, err)
		}
	}

	t.Run("unsupported platform", func(t *testing.T) {
		orig := getRuntime
		getRuntime = func() string { return "plan9" }
		defer func() { getRuntime = orig }()

		if err := OpenURL("https://example.com/poster.jpg"); err == nil {
			t.Error("expected error on unsupported platform")
		}
	})
}
