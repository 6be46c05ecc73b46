package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackzampolin/lectern/internal/home"
	"github.com/jackzampolin/lectern/internal/resource"
)

func newTestDir(t *testing.T) *home.Dir {
	t.Helper()
	dir, err := home.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := dir.EnsurePagesDir("doc1"); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLocal_Fetch(t *testing.T) {
	dir := newTestDir(t)
	if err := os.WriteFile(dir.PageImagePath("doc1", 1), []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir.PageMarkdownPath("doc1", 1), []byte("# Page 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLocal(dir, "doc1", LocalConfig{})

	v, err := l.Fetch(context.Background(), 1, resource.KindImage)
	if err != nil {
		t.Fatalf("image fetch failed: %v", err)
	}
	if string(v.Data) != "png-bytes" || v.ContentType != "image/png" {
		t.Errorf("unexpected value %+v", v)
	}

	v, err = l.Fetch(context.Background(), 1, resource.KindMarkdown)
	if err != nil {
		t.Fatalf("markdown fetch failed: %v", err)
	}
	if v.ContentType != "text/markdown" {
		t.Errorf("ContentType = %s", v.ContentType)
	}

	// Missing resources and disabled kinds report ErrNotFound.
	if _, err := l.Fetch(context.Background(), 2, resource.KindImage); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing page, got %v", err)
	}
	if _, err := l.Fetch(context.Background(), 1, resource.KindRaster); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound without a session, got %v", err)
	}
	if _, err := l.Fetch(context.Background(), 1, resource.Kind("bogus")); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestOrigin_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/documents/doc1/pages/3/image":
			w.Header().Set("Content-Type", "image/png")
			fmt.Fprint(w, "remote-png")
		case "/documents/doc1/pages/4/image":
			http.Error(w, "nope", http.StatusNotFound)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	o := NewOrigin(srv.URL, "doc1", time.Second)

	v, err := o.Fetch(context.Background(), 3, resource.KindImage)
	if err != nil {
		t.Fatalf("origin fetch failed: %v", err)
	}
	if string(v.Data) != "remote-png" || v.ContentType != "image/png" {
		t.Errorf("unexpected value %+v", v)
	}

	if _, err := o.Fetch(context.Background(), 4, resource.KindImage); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for 404, got %v", err)
	}
	if _, err := o.Fetch(context.Background(), 5, resource.KindImage); err == nil {
		t.Error("expected error for 500")
	}
}

func TestFallback(t *testing.T) {
	dir := newTestDir(t)
	if err := os.WriteFile(dir.PageImagePath("doc1", 1), []byte("local-png"), 0o644); err != nil {
		t.Fatal(err)
	}

	var originHits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		originHits++
		fmt.Fprint(w, "origin-png")
	}))
	defer srv.Close()

	f := NewFallback(
		NewLocal(dir, "doc1", LocalConfig{}),
		NewOrigin(srv.URL, "doc1", time.Second),
	)

	// Found locally: the origin is never consulted.
	v, err := f.Fetch(context.Background(), 1, resource.KindImage)
	if err != nil {
		t.Fatal(err)
	}
	if string(v.Data) != "local-png" || originHits != 0 {
		t.Errorf("expected local hit (data=%q, originHits=%d)", v.Data, originHits)
	}

	// Missing locally: proxied from the origin.
	v, err = f.Fetch(context.Background(), 2, resource.KindImage)
	if err != nil {
		t.Fatal(err)
	}
	if string(v.Data) != "origin-png" || originHits != 1 {
		t.Errorf("expected origin hit (data=%q, originHits=%d)", v.Data, originHits)
	}
}

func TestProbe(t *testing.T) {
	t.Run("healthy origin", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				w.WriteHeader(http.StatusOK)
				return
			}
			http.NotFound(w, r)
		}))
		defer srv.Close()

		if err := Probe(context.Background(), srv.URL, 2); err != nil {
			t.Errorf("Probe failed: %v", err)
		}
	})

	t.Run("unreachable origin", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := Probe(ctx, "http://127.0.0.1:1", 2); err == nil {
			t.Error("expected Probe to fail")
		}
	})
}
