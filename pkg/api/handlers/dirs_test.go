package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marmos91/kvfs/pkg/fs"
)

func decodeListResponse(t *testing.T, w *httptest.ResponseRecorder) ListResponse {
	t.Helper()

	var resp ListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode list response: %v", err)
	}
	return resp
}

func TestDirList_EmptyRoot(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(t, router, "GET", "/dirs/", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	resp := decodeListResponse(t, w)
	if resp.Path != "/" {
		t.Errorf("Expected path '/', got '%s'", resp.Path)
	}
	if resp.Count != 0 || len(resp.Entries) != 0 {
		t.Errorf("Expected an empty listing, got %d entries", len(resp.Entries))
	}
}

func TestDirList_SortedEntries(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "PUT", "/files/banana.txt", []byte("b"))
	doRequest(t, router, "PUT", "/files/apple.txt", []byte("a"))
	doRequest(t, router, "PUT", "/files/cherry.txt", []byte("c"))

	w := doRequest(t, router, "GET", "/dirs/", nil)
	resp := decodeListResponse(t, w)

	want := []string{"apple.txt", "banana.txt", "cherry.txt"}
	if resp.Count != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), resp.Count)
	}
	for i, name := range want {
		if resp.Entries[i].Name != name {
			t.Errorf("Entry %d: expected '%s', got '%s'", i, name, resp.Entries[i].Name)
		}
		if resp.Entries[i].IsDir {
			t.Errorf("Entry '%s': expected a file", name)
		}
	}
}

func TestDirList_EntryWithChildrenIsDirectory(t *testing.T) {
	router, _ := newTestRouter(t)

	// No explicit mkdir: the parent exists by containing a child.
	doRequest(t, router, "PUT", "/files/docs/readme.txt", []byte("x"))

	w := doRequest(t, router, "GET", "/dirs/", nil)
	resp := decodeListResponse(t, w)

	if resp.Count != 1 {
		t.Fatalf("Expected 1 entry, got %d", resp.Count)
	}
	if resp.Entries[0].Name != "docs" || !resp.Entries[0].IsDir {
		t.Errorf("Expected directory entry 'docs', got %+v", resp.Entries[0])
	}
}

func TestDirList_ChildlessDirectoryNeedsResolve(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "POST", "/dirs/empty", nil)

	// Without resolution a childless directory is indistinguishable from a
	// file in the key layout.
	w := doRequest(t, router, "GET", "/dirs/", nil)
	resp := decodeListResponse(t, w)
	if resp.Count != 1 {
		t.Fatalf("Expected 1 entry, got %d", resp.Count)
	}
	if resp.Entries[0].IsDir {
		t.Error("Expected the unresolved entry to be reported as a file")
	}

	w = doRequest(t, router, "GET", "/dirs/?resolve=true", nil)
	resp = decodeListResponse(t, w)
	if !resp.Entries[0].IsDir {
		t.Error("Expected the resolved entry to be reported as a directory")
	}
}

func TestDirList_OnFile_Returns409(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "PUT", "/files/file.txt", []byte("data"))

	w := doRequest(t, router, "GET", "/dirs/file.txt", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestDirList_Subdirectory(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "PUT", "/files/docs/a.txt", []byte("a"))
	doRequest(t, router, "PUT", "/files/docs/b.txt", []byte("b"))
	doRequest(t, router, "PUT", "/files/other.txt", []byte("o"))

	w := doRequest(t, router, "GET", "/dirs/docs", nil)
	resp := decodeListResponse(t, w)

	if resp.Path != "/docs" {
		t.Errorf("Expected path '/docs', got '%s'", resp.Path)
	}
	if resp.Count != 2 {
		t.Fatalf("Expected 2 entries, got %d", resp.Count)
	}
	if resp.Entries[0].Name != "a.txt" || resp.Entries[1].Name != "b.txt" {
		t.Errorf("Unexpected entries: %+v", resp.Entries)
	}
}

func TestDirMkdir_Creates(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(t, router, "POST", "/dirs/docs", nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var resp MetadataResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode metadata: %v", err)
	}
	if resp.Type != "directory" {
		t.Errorf("Expected type 'directory', got '%s'", resp.Type)
	}
	if resp.Mode != fs.DefaultDirMode {
		t.Errorf("Expected mode %o, got %o", fs.DefaultDirMode, resp.Mode)
	}
	if resp.UID != 1000 || resp.GID != 1000 {
		t.Errorf("Expected owner 1000:1000, got %d:%d", resp.UID, resp.GID)
	}
}

func TestDirMkdir_ExistingDirectoryIsNoOp(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(t, router, "POST", "/dirs/docs", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d on first create, got %d", http.StatusCreated, w.Code)
	}

	w = doRequest(t, router, "POST", "/dirs/docs", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d on repeat create, got %d", http.StatusOK, w.Code)
	}
}

func TestDirMkdir_OverFile_Returns409(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "PUT", "/files/taken", []byte("data"))

	w := doRequest(t, router, "POST", "/dirs/taken", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestDirMkdir_WithParents(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(t, router, "POST", "/dirs/a/b/c?parents=true", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	// Every ancestor got its own record.
	for _, p := range []string{"/meta/a", "/meta/a/b", "/meta/a/b/c"} {
		r := doRequest(t, router, "GET", p, nil)
		if r.Code != http.StatusOK {
			t.Fatalf("Expected %s to exist, got status %d", p, r.Code)
		}
		var resp MetadataResponse
		if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode metadata: %v", err)
		}
		if resp.Type != "directory" {
			t.Errorf("%s: expected type 'directory', got '%s'", p, resp.Type)
		}
	}
}

func TestDirMkdir_DeepWithoutParents(t *testing.T) {
	router, _ := newTestRouter(t)

	// Containment is lexical, so intermediate records are optional.
	w := doRequest(t, router, "POST", "/dirs/x/y/z", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	// The intermediate has no record of its own but lists fine.
	r := doRequest(t, router, "GET", "/dirs/x/y", nil)
	resp := decodeListResponse(t, r)
	if resp.Count != 1 || resp.Entries[0].Name != "z" {
		t.Errorf("Expected single entry 'z', got %+v", resp.Entries)
	}
}

func TestDirMkdir_Root(t *testing.T) {
	router, _ := newTestRouter(t)

	// Root already exists, so this is an idempotent no-op.
	w := doRequest(t, router, "POST", "/dirs/", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
}
