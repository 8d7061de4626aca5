//go:build integration

package badger_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/kvfs/pkg/fs"
	badgerstore "github.com/marmos91/kvfs/pkg/kv/badger"
)

// TestBadgerFilesystem_Integration exercises the filesystem layer on a
// disk-backed Badger store.
func TestBadgerFilesystem_Integration(t *testing.T) {
	ctx := context.Background()

	tempDir, err := os.MkdirTemp("", "kvfs-badger-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "kvfs")

	t.Run("OpenAndHealthcheck", func(t *testing.T) {
		store, err := badgerstore.New(badgerstore.Config{Path: dbPath})
		if err != nil {
			t.Fatalf("Failed to open badger store: %v", err)
		}
		defer store.Close()

		if err := store.HealthCheck(ctx); err != nil {
			t.Fatalf("HealthCheck failed: %v", err)
		}
	})

	t.Run("MultiChunkRoundTrip", func(t *testing.T) {
		store, err := badgerstore.New(badgerstore.Config{Path: dbPath})
		if err != nil {
			t.Fatalf("Failed to open badger store: %v", err)
		}
		defer store.Close()

		fsys := fs.New(store)
		if err := fsys.EnsureRoot(ctx); err != nil {
			t.Fatalf("EnsureRoot failed: %v", err)
		}
		if err := fsys.MkdirAll(ctx, "/docs/reports"); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}

		// 5000 bytes span three chunks.
		content := bytes.Repeat([]byte("badger"), 834)[:5000]
		n, err := fsys.WriteRange(ctx, "/docs/reports/q3.txt", 0, content)
		if err != nil {
			t.Fatalf("WriteRange failed: %v", err)
		}
		if n != len(content) {
			t.Fatalf("WriteRange wrote %d bytes, want %d", n, len(content))
		}

		got, err := fsys.ReadRange(ctx, "/docs/reports/q3.txt", 0, 5000)
		if err != nil {
			t.Fatalf("ReadRange failed: %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Error("Read content does not match written content")
		}

		// Cross-boundary slice covering the end of chunk 0 and the start
		// of chunk 1.
		slice, err := fsys.ReadRange(ctx, "/docs/reports/q3.txt", 2000, 100)
		if err != nil {
			t.Fatalf("ReadRange(2000, 100) failed: %v", err)
		}
		if !bytes.Equal(slice, content[2000:2100]) {
			t.Error("Cross-boundary slice does not match")
		}
	})

	t.Run("Persistence", func(t *testing.T) {
		content := []byte("survives a process restart")

		// Phase 1: write and close.
		{
			store, err := badgerstore.New(badgerstore.Config{Path: dbPath})
			if err != nil {
				t.Fatalf("Failed to open badger store: %v", err)
			}

			fsys := fs.New(store)
			if err := fsys.EnsureRoot(ctx); err != nil {
				t.Fatalf("EnsureRoot failed: %v", err)
			}
			if _, err := fsys.WriteRange(ctx, "/persist.txt", 0, content); err != nil {
				t.Fatalf("WriteRange failed: %v", err)
			}

			if err := store.Close(); err != nil {
				t.Fatalf("Failed to close store: %v", err)
			}
		}

		// Phase 2: reopen and verify.
		{
			store, err := badgerstore.New(badgerstore.Config{Path: dbPath})
			if err != nil {
				t.Fatalf("Failed to reopen badger store: %v", err)
			}
			defer store.Close()

			fsys := fs.New(store)

			meta, err := fsys.Stat(ctx, "/persist.txt")
			if err != nil {
				t.Fatalf("Stat after reopen failed: %v", err)
			}
			if meta.Size != uint64(len(content)) {
				t.Errorf("Expected size %d, got %d", len(content), meta.Size)
			}

			got, err := fsys.ReadRange(ctx, "/persist.txt", 0, meta.Size)
			if err != nil {
				t.Fatalf("ReadRange after reopen failed: %v", err)
			}
			if !bytes.Equal(got, content) {
				t.Error("Content after reopen does not match")
			}
		}
	})
}
