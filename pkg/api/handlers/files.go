package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/kvfs/pkg/fs"
)

// Content types for file and directory responses.
const (
	contentTypeOctetStream = "application/octet-stream"
	contentTypeDirectory   = "application/x-directory"
)

// FileHandler handles file content and metadata API endpoints.
//
// Paths are taken from the chi wildcard, so a request for
// /api/v1/files/docs/readme.txt operates on /docs/readme.txt.
type FileHandler struct {
	fsys *fs.FileSystem
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fsys *fs.FileSystem) *FileHandler {
	return &FileHandler{fsys: fsys}
}

// MetadataResponse describes a file or directory record.
type MetadataResponse struct {
	Path      string `json:"path"`
	Type      string `json:"type"`
	Mode      uint32 `json:"mode"`
	UID       uint32 `json:"uid"`
	GID       uint32 `json:"gid"`
	Size      uint64 `json:"size"`
	Atime     int64  `json:"atime"`
	Mtime     int64  `json:"mtime"`
	Ctime     int64  `json:"ctime"`
	NumChunks uint32 `json:"num_chunks"`
}

// WriteResponse is the response body for file writes.
type WriteResponse struct {
	MetadataResponse
	BytesWritten int `json:"bytes_written"`
}

// SetAttrRequest is the request body for PATCH /api/v1/meta/{path}.
// Nil fields are left unchanged.
type SetAttrRequest struct {
	Mode  *uint32 `json:"mode,omitempty"`
	UID   *uint32 `json:"uid,omitempty"`
	GID   *uint32 `json:"gid,omitempty"`
	Atime *int64  `json:"atime,omitempty"`
	Mtime *int64  `json:"mtime,omitempty"`
	Size  *uint64 `json:"size,omitempty"`
}

// requestPath extracts the filesystem path from the chi wildcard parameter.
func requestPath(r *http.Request) string {
	return "/" + chi.URLParam(r, "*")
}

// metadataToResponse converts a metadata record to its API representation.
func metadataToResponse(path string, meta *fs.Metadata) MetadataResponse {
	if normalized, err := fs.NormalizePath(path); err == nil {
		path = normalized
	}
	kind := "file"
	if meta.IsDir() {
		kind = "directory"
	}
	return MetadataResponse{
		Path:      path,
		Type:      kind,
		Mode:      meta.Mode,
		UID:       meta.UID,
		GID:       meta.GID,
		Size:      meta.Size,
		Atime:     meta.Atime,
		Mtime:     meta.Mtime,
		Ctime:     meta.Ctime,
		NumChunks: meta.NumChunks,
	}
}

// setFileHeaders sets the metadata headers shared by GET and HEAD responses.
func setFileHeaders(w http.ResponseWriter, meta *fs.Metadata) {
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Last-Modified", time.Unix(meta.Mtime, 0).UTC().Format(http.TimeFormat))
	w.Header().Set("X-Kvfs-Mode", strconv.FormatUint(uint64(meta.Mode), 8))
	w.Header().Set("X-Kvfs-Uid", strconv.FormatUint(uint64(meta.UID), 10))
	w.Header().Set("X-Kvfs-Gid", strconv.FormatUint(uint64(meta.GID), 10))
}

// errUnsatisfiableRange reports a syntactically valid range that selects no
// bytes of the current file.
var errUnsatisfiableRange = errors.New("range not satisfiable for current file size")

// parseRange interprets a single-range bytes= header against the current file
// size. ok=false with a nil error means the header should be ignored and the
// full file served, which is how multi-range and malformed headers are
// handled. errUnsatisfiableRange means the range selects no bytes and the
// response must be 416.
func parseRange(header string, size uint64) (offset, length uint64, ok bool, err error) {
	spec, found := strings.CutPrefix(header, "bytes=")
	if !found || strings.Contains(spec, ",") {
		return 0, 0, false, nil
	}
	first, last, found := strings.Cut(strings.TrimSpace(spec), "-")
	if !found {
		return 0, 0, false, nil
	}

	if first == "" {
		// Suffix form "-N": the last N bytes.
		n, perr := strconv.ParseUint(last, 10, 64)
		if perr != nil {
			return 0, 0, false, nil
		}
		if n == 0 || size == 0 {
			return 0, 0, false, errUnsatisfiableRange
		}
		if n > size {
			n = size
		}
		return size - n, n, true, nil
	}

	start, perr := strconv.ParseUint(first, 10, 64)
	if perr != nil {
		return 0, 0, false, nil
	}
	if start >= size {
		return 0, 0, false, errUnsatisfiableRange
	}
	if last == "" {
		// Open form "N-": from N to the end.
		return start, size - start, true, nil
	}
	end, perr := strconv.ParseUint(last, 10, 64)
	if perr != nil || end < start {
		return 0, 0, false, nil
	}
	if end >= size {
		end = size - 1
	}
	return start, end - start + 1, true, nil
}

// Read handles GET /api/v1/files/{path}.
//
// Serves the file content, honoring single-range Range headers with a 206
// response. A range starting at or past the end of the file yields 416.
// Sparse regions read back as zeros.
func (h *FileHandler) Read(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)

	meta, err := h.fsys.Stat(r.Context(), path)
	if err != nil {
		writeFilesystemError(w, r, err)
		return
	}
	if meta.IsDir() {
		Conflict(w, "Path is a directory")
		return
	}

	offset, length := uint64(0), meta.Size
	status := http.StatusOK

	if rangeHeader := r.Header.Get("Range"); rangeHeader != "" {
		start, n, ok, rerr := parseRange(rangeHeader, meta.Size)
		if rerr != nil {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", meta.Size))
			WriteProblem(w, http.StatusRequestedRangeNotSatisfiable, "Range Not Satisfiable", rerr.Error())
			return
		}
		if ok {
			offset, length = start, n
			status = http.StatusPartialContent
		}
	}

	data, err := h.fsys.ReadRange(r.Context(), path, offset, length)
	if err != nil {
		writeFilesystemError(w, r, err)
		return
	}

	setFileHeaders(w, meta)
	w.Header().Set("Content-Type", contentTypeOctetStream)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if status == http.StatusPartialContent {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", offset, offset+uint64(len(data))-1, meta.Size))
	}
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// Stat handles HEAD /api/v1/files/{path}.
//
// Returns the metadata headers without a body. Directories report
// Content-Type application/x-directory and a zero length.
func (h *FileHandler) Stat(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)

	meta, err := h.fsys.Stat(r.Context(), path)
	if err != nil {
		writeFilesystemError(w, r, err)
		return
	}

	setFileHeaders(w, meta)
	if meta.IsDir() {
		w.Header().Set("Content-Type", contentTypeDirectory)
		w.Header().Set("Content-Length", "0")
	} else {
		w.Header().Set("Content-Type", contentTypeOctetStream)
		w.Header().Set("Content-Length", strconv.FormatUint(meta.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
}

// Write handles PUT /api/v1/files/{path}.
//
// Without parameters the body replaces the whole file, creating it when
// missing (201) and truncating any surviving tail when it was longer (200).
// An empty body creates an empty file or truncates an existing one.
//
// With ?offset=N the body is written at that byte offset and the rest of the
// file is left untouched; writing past the end extends the file sparsely.
func (h *FileHandler) Write(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		BadRequest(w, "Failed to read request body")
		return
	}

	if rawOffset := r.URL.Query().Get("offset"); rawOffset != "" {
		offset, perr := strconv.ParseUint(rawOffset, 10, 64)
		if perr != nil {
			BadRequest(w, "Invalid offset parameter")
			return
		}

		n, err := h.fsys.WriteRange(r.Context(), path, offset, body)
		if err != nil {
			writeFilesystemError(w, r, err)
			return
		}
		meta, err := h.fsys.Stat(r.Context(), path)
		if err != nil {
			writeFilesystemError(w, r, err)
			return
		}
		WriteJSONOK(w, WriteResponse{
			MetadataResponse: metadataToResponse(path, meta),
			BytesWritten:     n,
		})
		return
	}

	// Full replace. Whether the file already existed decides the status code.
	created := false
	if _, err := h.fsys.Stat(r.Context(), path); err != nil {
		if !errors.Is(err, fs.ErrNotFound) {
			writeFilesystemError(w, r, err)
			return
		}
		created = true
	}

	n, err := h.fsys.WriteRange(r.Context(), path, 0, body)
	if err != nil {
		writeFilesystemError(w, r, err)
		return
	}

	// Cut any surviving tail when the previous content was longer.
	size := uint64(len(body))
	meta, err := h.fsys.SetAttr(r.Context(), path, fs.SetAttr{Size: &size})
	if err != nil {
		writeFilesystemError(w, r, err)
		return
	}

	resp := WriteResponse{
		MetadataResponse: metadataToResponse(path, meta),
		BytesWritten:     n,
	}
	if created {
		WriteJSONCreated(w, resp)
	} else {
		WriteJSONOK(w, resp)
	}
}

// Delete handles DELETE /api/v1/files/{path}.
//
// Deletes a file or an empty directory. With ?recursive=true a directory is
// removed together with everything below it, children first. Deleting a
// missing path succeeds, so the operation is idempotent. The root cannot be
// deleted.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)

	normalized, err := fs.NormalizePath(path)
	if err != nil {
		writeFilesystemError(w, r, err)
		return
	}
	if normalized == fs.RootPath {
		BadRequest(w, "Cannot delete the filesystem root")
		return
	}

	if r.URL.Query().Get("recursive") == "true" {
		err = h.deleteRecursive(r.Context(), normalized)
	} else {
		err = h.fsys.Delete(r.Context(), normalized)
	}
	if err != nil {
		writeFilesystemError(w, r, err)
		return
	}

	WriteNoContent(w)
}

// deleteRecursive removes a path and everything below it, children first.
// Implicit directories have children but no metadata record, so the listing
// decides whether to recurse, not the record.
func (h *FileHandler) deleteRecursive(ctx context.Context, path string) error {
	meta, err := h.fsys.Stat(ctx, path)
	switch {
	case errors.Is(err, fs.ErrCorruptMetadata):
		// Unreadable record: Delete clears it like a file.
		return h.fsys.Delete(ctx, path)
	case err != nil && !errors.Is(err, fs.ErrNotFound):
		return err
	}

	if meta == nil || meta.IsDir() {
		entries, err := h.fsys.List(ctx, path, fs.ListOptions{})
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := h.deleteRecursive(ctx, joinChild(path, entry.Name)); err != nil {
				return err
			}
		}
	}

	return h.fsys.Delete(ctx, path)
}

// joinChild appends a child name to a normalized directory path.
func joinChild(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

// GetMetadata handles GET /api/v1/meta/{path}.
// Returns the full metadata record for a file or directory.
func (h *FileHandler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)

	meta, err := h.fsys.Stat(r.Context(), path)
	if err != nil {
		writeFilesystemError(w, r, err)
		return
	}

	WriteJSONOK(w, metadataToResponse(path, meta))
}

// SetMetadata handles PATCH /api/v1/meta/{path}.
//
// Applies the non-nil fields of the request to the record and returns the
// updated metadata. Setting size truncates or sparsely extends a regular
// file; mode changes touch only the permission bits.
func (h *FileHandler) SetMetadata(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)

	var req SetAttrRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	meta, err := h.fsys.SetAttr(r.Context(), path, fs.SetAttr{
		Mode:  req.Mode,
		UID:   req.UID,
		GID:   req.GID,
		Atime: req.Atime,
		Mtime: req.Mtime,
		Size:  req.Size,
	})
	if err != nil {
		writeFilesystemError(w, r, err)
		return
	}

	WriteJSONOK(w, metadataToResponse(path, meta))
}
