package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ByLCY/textoverlay/errors"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func fastLoader(opts Options) *Loader {
	opts.RetryDelay = time.Millisecond
	return NewLoader(opts)
}

func TestLoadHTTP(t *testing.T) {
	data := pngBytes(t, 12, 7)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	img, err := fastLoader(Options{}).Load(context.Background(), srv.URL+"/a.png")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if img.Bounds().Dx() != 12 || img.Bounds().Dy() != 7 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
}

func TestLoadRetriesServerErrors(t *testing.T) {
	data := pngBytes(t, 4, 4)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	if _, err := fastLoader(Options{Retries: 3}).Load(context.Background(), srv.URL); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestLoadDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := fastLoader(Options{Retries: 3}).Load(context.Background(), srv.URL)
	if !errors.Is(err, errors.ErrCodeImageLoad) {
		t.Fatalf("expected IMAGE_LOAD, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestLoadGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := fastLoader(Options{Retries: 2}).Load(context.Background(), srv.URL)
	if !errors.Is(err, errors.ErrCodeImageLoad) {
		t.Fatalf("expected IMAGE_LOAD, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestLoadRejectsOversizedBody(t *testing.T) {
	data := pngBytes(t, 64, 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	_, err := fastLoader(Options{MaxBytes: 16}).Load(context.Background(), srv.URL)
	if !errors.Is(err, errors.ErrCodeImageLoad) {
		t.Fatalf("expected IMAGE_LOAD, got %v", err)
	}
}

func TestLoadUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not an image</html>"))
	}))
	defer srv.Close()

	_, err := fastLoader(Options{}).Load(context.Background(), srv.URL)
	if !errors.Is(err, errors.ErrCodeImageLoad) {
		t.Fatalf("expected IMAGE_LOAD, got %v", err)
	}
}

func TestLoadDataURI(t *testing.T) {
	ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 3, 5))
	img, err := fastLoader(Options{}).Load(context.Background(), ref)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 5 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}

	if _, err := fastLoader(Options{}).Load(context.Background(), "data:image/png;base64"); !errors.Is(err, errors.ErrCodeValidation) {
		t.Fatalf("expected VALIDATION for malformed data URI, got %v", err)
	}
}

func TestLoadFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.png")
	if err := os.WriteFile(path, pngBytes(t, 9, 9), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := fastLoader(Options{}).Load(context.Background(), path); !errors.Is(err, errors.ErrCodeValidation) {
		t.Fatalf("expected VALIDATION when files are disabled, got %v", err)
	}

	l := fastLoader(Options{AllowFiles: true})
	for _, ref := range []string{path, "file://" + path} {
		img, err := l.Load(context.Background(), ref)
		if err != nil {
			t.Fatalf("load %s: %v", ref, err)
		}
		if img.Bounds().Dx() != 9 {
			t.Fatalf("unexpected bounds %v", img.Bounds())
		}
	}

	if _, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.png")); !errors.Is(err, errors.ErrCodeImageLoad) {
		t.Fatalf("expected IMAGE_LOAD for missing file, got %v", err)
	}
}

func TestLoadRejectsUnknownScheme(t *testing.T) {
	for _, ref := range []string{"", "ftp://example.com/a.png"} {
		if _, err := fastLoader(Options{}).Load(context.Background(), ref); !errors.Is(err, errors.ErrCodeValidation) {
			t.Fatalf("%q: expected VALIDATION, got %v", ref, err)
		}
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry(ctx, 5, time.Hour, func() error {
		calls++
		cancel()
		return retryable(context.DeadlineExceeded)
	})
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
