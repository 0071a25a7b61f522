package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"rewatch/internal/catalog"
)

// WriteCatalog writes entries to path in catalog format, creating parent
// directories as needed.
func WriteCatalog(t testing.TB, path string, entries ...catalog.Entry) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	for i := range entries {
		entries[i].Normalize()
	}
	data, err := catalog.Encode(&catalog.Catalog{Episodes: entries})
	if err != nil {
		t.Fatalf("encode catalog: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadCatalog decodes the catalog at path.
func ReadCatalog(t testing.TB, path string) *catalog.Catalog {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	cat, err := catalog.Decode(data)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return cat
}

// Entry builds a minimal catalog entry.
func Entry(id, title, episodeDate string) catalog.Entry {
	entry := catalog.Entry{ID: id, Title: title, EpisodeDate: episodeDate}
	entry.Normalize()
	return entry
}
