package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/brunobiangulo/pdfoutline/outline"
)

func spans(text string) []outline.NormalizedSpan {
	return []outline.NormalizedSpan{{Text: text, Size: 10, Page: 1}}
}

func TestGetPut(t *testing.T) {
	c, err := New(4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	k := Key{Path: "/docs/a.pdf", Size: 10}

	if _, ok := c.Get(k); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Put(k, spans("a"))
	got, ok := c.Get(k)
	if !ok || len(got) != 1 || got[0].Text != "a" {
		t.Fatalf("Get = %+v, %v", got, ok)
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats = (%d, %d), want (1, 1)", hits, misses)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a, b, d := Key{Path: "a"}, Key{Path: "b"}, Key{Path: "d"}

	c.Put(a, spans("a"))
	c.Put(b, spans("b"))
	c.Get(a) // a is now most recent
	if evicted := c.Put(d, spans("d")); !evicted {
		t.Error("expected an eviction")
	}

	if _, ok := c.Get(b); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get(a); !ok {
		t.Error("a should still be cached")
	}
	if c.Len() != 2 || c.Capacity() != 2 {
		t.Errorf("Len/Capacity = %d/%d, want 2/2", c.Len(), c.Capacity())
	}
}

func TestDefaultCapacity(t *testing.T) {
	c, err := New(0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Capacity() != DefaultCapacity {
		t.Errorf("Capacity = %d, want %d", c.Capacity(), DefaultCapacity)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := Key{Path: fmt.Sprintf("doc-%d", (w+i)%16)}
				if _, ok := c.Get(k); !ok {
					c.Put(k, spans(k.Path))
				}
			}
		}(w)
	}
	wg.Wait()

	if c.Len() > 8 {
		t.Errorf("Len = %d exceeds capacity", c.Len())
	}
}

func TestKeyForTracksFileVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	k1 := KeyFor(path)
	if k1.Size != 3 || !filepath.IsAbs(k1.Path) {
		t.Fatalf("unexpected key %+v", k1)
	}

	if err := os.WriteFile(path, []byte("longer"), 0o644); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}
	if k2 := KeyFor(path); k2 == k1 {
		t.Error("key should change when the file changes")
	}
}

func TestKeyForMissingFile(t *testing.T) {
	k := KeyFor(filepath.Join(t.TempDir(), "missing.pdf"))
	if k.Size != 0 || k.ModTime != 0 || k.Path == "" {
		t.Errorf("unexpected key for missing file: %+v", k)
	}
}
