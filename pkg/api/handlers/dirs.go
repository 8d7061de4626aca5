package handlers

import (
	"errors"
	"net/http"

	"github.com/marmos91/kvfs/pkg/fs"
)

// DirHandler handles directory API endpoints.
type DirHandler struct {
	fsys *fs.FileSystem
}

// NewDirHandler creates a new DirHandler.
func NewDirHandler(fsys *fs.FileSystem) *DirHandler {
	return &DirHandler{fsys: fsys}
}

// DirEntry is a single entry in a directory listing.
type DirEntry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
}

// ListResponse is the response body for directory listings.
type ListResponse struct {
	Path    string     `json:"path"`
	Entries []DirEntry `json:"entries"`
	Count   int        `json:"count"`
}

// List handles GET /api/v1/dirs/{path}.
//
// Returns the direct children of a directory, sorted by name. Entry types
// are inferred from the key layout, which cannot distinguish a childless
// subdirectory from a file; pass ?resolve=true to spend one metadata read
// per ambiguous entry and classify it exactly.
func (h *DirHandler) List(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)

	opts := fs.ListOptions{
		ResolveTypes: r.URL.Query().Get("resolve") == "true",
	}

	entries, err := h.fsys.List(r.Context(), path, opts)
	if err != nil {
		writeFilesystemError(w, r, err)
		return
	}

	resp := ListResponse{
		Path:    path,
		Entries: make([]DirEntry, len(entries)),
		Count:   len(entries),
	}
	if normalized, err := fs.NormalizePath(path); err == nil {
		resp.Path = normalized
	}
	for i, entry := range entries {
		resp.Entries[i] = DirEntry{Name: entry.Name, IsDir: entry.IsDir}
	}

	WriteJSONOK(w, resp)
}

// Mkdir handles POST /api/v1/dirs/{path}.
//
// Creates a directory and returns its metadata with 201. Creating a
// directory that already exists is a no-op answered with 200. With
// ?parents=true missing ancestors are created as well. Creating a directory
// over an existing file fails with 409.
func (h *DirHandler) Mkdir(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)

	existed := false
	if meta, err := h.fsys.Stat(r.Context(), path); err == nil && meta.IsDir() {
		existed = true
	}

	var err error
	if r.URL.Query().Get("parents") == "true" {
		err = h.fsys.MkdirAll(r.Context(), path)
	} else {
		err = h.fsys.Mkdir(r.Context(), path)
	}
	if err != nil {
		writeFilesystemError(w, r, err)
		return
	}

	meta, err := h.fsys.Stat(r.Context(), path)
	if err != nil {
		// The root has no explicit record until EnsureRoot persists one.
		if errors.Is(err, fs.ErrNotFound) {
			WriteNoContent(w)
			return
		}
		writeFilesystemError(w, r, err)
		return
	}

	if existed {
		WriteJSONOK(w, metadataToResponse(path, meta))
		return
	}
	WriteJSONCreated(w, metadataToResponse(path, meta))
}
