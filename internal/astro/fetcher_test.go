package astro

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFetcher_Default(t *testing.T) {
	result := NewFetcher().Fetch(context.Background(), "")
	if result.Error != nil {
		t.Fatalf("Fetch default: %v", result.Error)
	}
	if result.Catalog.Len() != DefaultCatalog().Len() {
		t.Errorf("default catalog len = %d, want %d", result.Catalog.Len(), DefaultCatalog().Len())
	}
}

func TestFetcher_HTTP(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"catalog": [["Vega", 0.03, 18.61567, 38.784]]}`))
	}))
	defer srv.Close()

	f := NewFetcher(WithTimeout(5 * time.Second))
	result := f.Fetch(context.Background(), srv.URL)
	if result.Error != nil {
		t.Fatalf("Fetch: %v", result.Error)
	}
	if result.Catalog.Len() != 1 {
		t.Errorf("catalog len = %d, want 1", result.Catalog.Len())
	}
	if gotUA == "" {
		t.Error("User-Agent header not set")
	}
	if result.Source != srv.URL {
		t.Errorf("Source = %q, want %q", result.Source, srv.URL)
	}
}

func TestFetcher_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	result := NewFetcher(WithHTTPClient(srv.Client())).Fetch(context.Background(), srv.URL)
	if result.Error == nil {
		t.Fatal("expected error for 404")
	}
	if result.Catalog != nil {
		t.Error("catalog should be nil on error")
	}
}

func TestFetcher_FileAndDirectory(t *testing.T) {
	dir := t.TempDir()

	file := filepath.Join(dir, "cat.json")
	if err := os.WriteFile(file, DefaultCatalogJSON(), 0o644); err != nil {
		t.Fatal(err)
	}
	result := NewFetcher().Fetch(context.Background(), file)
	if result.Error != nil {
		t.Fatalf("Fetch file: %v", result.Error)
	}
	if result.Catalog.Shape() != ShapeFlat {
		t.Errorf("file catalog shape = %v, want flat", result.Catalog.Shape())
	}

	shardDir := filepath.Join(dir, "shards")
	if err := WriteShards(shardDir, BuildShards(testHYGStars(50), 10)); err != nil {
		t.Fatalf("WriteShards: %v", err)
	}
	result = NewFetcher().Fetch(context.Background(), shardDir)
	if result.Error != nil {
		t.Fatalf("Fetch dir: %v", result.Error)
	}
	if result.Catalog.Shape() != ShapeGrouped || result.Catalog.Len() != 50 {
		t.Errorf("dir catalog = %v/%d, want grouped/50", result.Catalog.Shape(), result.Catalog.Len())
	}
}

func TestFetcher_Missing(t *testing.T) {
	result := NewFetcher().Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	if result.Error == nil {
		t.Fatal("expected error for missing file")
	}
}
