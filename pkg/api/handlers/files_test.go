package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/kvfs/pkg/fs"
	"github.com/marmos91/kvfs/pkg/kv/memory"
)

// newTestRouter builds a router with the filesystem routes mounted the same
// way the API router mounts them, minus authentication.
func newTestRouter(t *testing.T) (*chi.Mux, *fs.FileSystem) {
	t.Helper()

	fsys := fs.New(memory.New(), fs.WithIdentity(fs.Identity{UID: 1000, GID: 1000}))
	if err := fsys.EnsureRoot(context.Background()); err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}

	fileHandler := NewFileHandler(fsys)
	dirHandler := NewDirHandler(fsys)

	r := chi.NewRouter()
	r.Get("/files/*", fileHandler.Read)
	r.Head("/files/*", fileHandler.Stat)
	r.Put("/files/*", fileHandler.Write)
	r.Delete("/files/*", fileHandler.Delete)
	r.Get("/meta/*", fileHandler.GetMetadata)
	r.Patch("/meta/*", fileHandler.SetMetadata)
	r.Get("/dirs/*", dirHandler.List)
	r.Post("/dirs/*", dirHandler.Mkdir)

	return r, fsys
}

func doRequest(t *testing.T, router *chi.Mux, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeWriteResponse(t *testing.T, w *httptest.ResponseRecorder) WriteResponse {
	t.Helper()

	var resp WriteResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode write response: %v", err)
	}
	return resp
}

func TestFileWrite_CreatesFile(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(t, router, "PUT", "/files/docs/readme.txt", []byte("hello world"))

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	resp := decodeWriteResponse(t, w)
	if resp.Path != "/docs/readme.txt" {
		t.Errorf("Expected path '/docs/readme.txt', got '%s'", resp.Path)
	}
	if resp.Type != "file" {
		t.Errorf("Expected type 'file', got '%s'", resp.Type)
	}
	if resp.Size != 11 {
		t.Errorf("Expected size 11, got %d", resp.Size)
	}
	if resp.BytesWritten != 11 {
		t.Errorf("Expected 11 bytes written, got %d", resp.BytesWritten)
	}
	if resp.UID != 1000 || resp.GID != 1000 {
		t.Errorf("Expected owner 1000:1000, got %d:%d", resp.UID, resp.GID)
	}
}

func TestFileWrite_ReplaceTruncates(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "PUT", "/files/file.txt", []byte("a much longer original content"))
	w := doRequest(t, router, "PUT", "/files/file.txt", []byte("short"))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	resp := decodeWriteResponse(t, w)
	if resp.Size != 5 {
		t.Errorf("Expected size 5 after replace, got %d", resp.Size)
	}

	r := doRequest(t, router, "GET", "/files/file.txt", nil)
	if r.Body.String() != "short" {
		t.Errorf("Expected body 'short', got '%s'", r.Body.String())
	}
}

func TestFileWrite_EmptyBodyCreatesEmptyFile(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(t, router, "PUT", "/files/empty.txt", nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}
	resp := decodeWriteResponse(t, w)
	if resp.Size != 0 {
		t.Errorf("Expected size 0, got %d", resp.Size)
	}

	r := doRequest(t, router, "GET", "/files/empty.txt", nil)
	if r.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, r.Code)
	}
	if r.Body.Len() != 0 {
		t.Errorf("Expected empty body, got %d bytes", r.Body.Len())
	}
}

func TestFileWrite_OffsetLeavesRestUntouched(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "PUT", "/files/file.txt", []byte("aaaa"))
	w := doRequest(t, router, "PUT", "/files/file.txt?offset=2", []byte("zz"))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	resp := decodeWriteResponse(t, w)
	if resp.BytesWritten != 2 {
		t.Errorf("Expected 2 bytes written, got %d", resp.BytesWritten)
	}
	if resp.Size != 4 {
		t.Errorf("Expected size 4, got %d", resp.Size)
	}

	r := doRequest(t, router, "GET", "/files/file.txt", nil)
	if r.Body.String() != "aazz" {
		t.Errorf("Expected body 'aazz', got '%s'", r.Body.String())
	}
}

func TestFileWrite_SparseExtend(t *testing.T) {
	router, _ := newTestRouter(t)

	// Writing far past the start creates a sparse file spanning multiple
	// chunks; the hole reads back as zeros.
	w := doRequest(t, router, "PUT", "/files/sparse.bin?offset=5000", []byte("x"))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	resp := decodeWriteResponse(t, w)
	if resp.Size != 5001 {
		t.Errorf("Expected size 5001, got %d", resp.Size)
	}

	req := httptest.NewRequest("GET", "/files/sparse.bin", nil)
	req.Header.Set("Range", "bytes=0-9")
	r := httptest.NewRecorder()
	router.ServeHTTP(r, req)

	if r.Code != http.StatusPartialContent {
		t.Fatalf("Expected status %d, got %d", http.StatusPartialContent, r.Code)
	}
	if !bytes.Equal(r.Body.Bytes(), make([]byte, 10)) {
		t.Errorf("Expected 10 zero bytes in the hole, got %v", r.Body.Bytes())
	}
}

func TestFileWrite_InvalidOffset_Returns400(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(t, router, "PUT", "/files/file.txt?offset=abc", []byte("data"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestFileWrite_OnDirectory_Returns409(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "POST", "/dirs/docs", nil)
	w := doRequest(t, router, "PUT", "/files/docs", []byte("data"))

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestFileRead_FullRoundTrip(t *testing.T) {
	router, _ := newTestRouter(t)

	content := []byte("the quick brown fox jumps over the lazy dog")
	doRequest(t, router, "PUT", "/files/fox.txt", content)

	w := doRequest(t, router, "GET", "/files/fox.txt", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), content) {
		t.Errorf("Body mismatch: got '%s'", w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "application/octet-stream" {
		t.Errorf("Expected Content-Type application/octet-stream, got '%s'", got)
	}
	if got := w.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Errorf("Expected Accept-Ranges bytes, got '%s'", got)
	}
	if got := w.Header().Get("Content-Length"); got != fmt.Sprintf("%d", len(content)) {
		t.Errorf("Expected Content-Length %d, got '%s'", len(content), got)
	}
	if got := w.Header().Get("X-Kvfs-Mode"); got != "100644" {
		t.Errorf("Expected X-Kvfs-Mode 100644, got '%s'", got)
	}
	if got := w.Header().Get("X-Kvfs-Uid"); got != "1000" {
		t.Errorf("Expected X-Kvfs-Uid 1000, got '%s'", got)
	}
}

// chunkSpanningContent builds a deterministic payload larger than one chunk.
func chunkSpanningContent(n int) []byte {
	content := make([]byte, n)
	for i := range content {
		content[i] = byte('a' + i%26)
	}
	return content
}

func TestFileRead_Range(t *testing.T) {
	router, _ := newTestRouter(t)

	content := chunkSpanningContent(3000)
	doRequest(t, router, "PUT", "/files/big.bin", content)

	req := httptest.NewRequest("GET", "/files/big.bin", nil)
	req.Header.Set("Range", "bytes=1000-1999")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusPartialContent {
		t.Fatalf("Expected status %d, got %d", http.StatusPartialContent, w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), content[1000:2000]) {
		t.Error("Range body does not match the requested slice")
	}
	if got := w.Header().Get("Content-Range"); got != "bytes 1000-1999/3000" {
		t.Errorf("Expected Content-Range 'bytes 1000-1999/3000', got '%s'", got)
	}
}

func TestFileRead_SuffixRange(t *testing.T) {
	router, _ := newTestRouter(t)

	content := chunkSpanningContent(3000)
	doRequest(t, router, "PUT", "/files/big.bin", content)

	req := httptest.NewRequest("GET", "/files/big.bin", nil)
	req.Header.Set("Range", "bytes=-100")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusPartialContent {
		t.Fatalf("Expected status %d, got %d", http.StatusPartialContent, w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), content[2900:]) {
		t.Error("Suffix range body does not match the file tail")
	}
	if got := w.Header().Get("Content-Range"); got != "bytes 2900-2999/3000" {
		t.Errorf("Expected Content-Range 'bytes 2900-2999/3000', got '%s'", got)
	}
}

func TestFileRead_OpenEndedRange(t *testing.T) {
	router, _ := newTestRouter(t)

	content := chunkSpanningContent(3000)
	doRequest(t, router, "PUT", "/files/big.bin", content)

	req := httptest.NewRequest("GET", "/files/big.bin", nil)
	req.Header.Set("Range", "bytes=2500-")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusPartialContent {
		t.Fatalf("Expected status %d, got %d", http.StatusPartialContent, w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), content[2500:]) {
		t.Error("Open-ended range body does not match")
	}
}

func TestFileRead_RangeEndClippedToSize(t *testing.T) {
	router, _ := newTestRouter(t)

	content := chunkSpanningContent(3000)
	doRequest(t, router, "PUT", "/files/big.bin", content)

	req := httptest.NewRequest("GET", "/files/big.bin", nil)
	req.Header.Set("Range", "bytes=2900-9999")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusPartialContent {
		t.Fatalf("Expected status %d, got %d", http.StatusPartialContent, w.Code)
	}
	if got := w.Header().Get("Content-Range"); got != "bytes 2900-2999/3000" {
		t.Errorf("Expected clipped Content-Range 'bytes 2900-2999/3000', got '%s'", got)
	}
}

func TestFileRead_RangeBeyondEOF_Returns416(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "PUT", "/files/small.txt", []byte("tiny"))

	req := httptest.NewRequest("GET", "/files/small.txt", nil)
	req.Header.Set("Range", "bytes=100-200")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("Expected status %d, got %d", http.StatusRequestedRangeNotSatisfiable, w.Code)
	}
	if got := w.Header().Get("Content-Range"); got != "bytes */4" {
		t.Errorf("Expected Content-Range 'bytes */4', got '%s'", got)
	}
}

func TestFileRead_MalformedRangeServesFullFile(t *testing.T) {
	router, _ := newTestRouter(t)

	content := []byte("full content")
	doRequest(t, router, "PUT", "/files/file.txt", content)

	req := httptest.NewRequest("GET", "/files/file.txt", nil)
	req.Header.Set("Range", "bytes=abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), content) {
		t.Error("Expected the full file body")
	}
}

func TestFileRead_NotFound_Returns404(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(t, router, "GET", "/files/missing.txt", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != ContentTypeProblemJSON {
		t.Errorf("Expected Content-Type %s, got '%s'", ContentTypeProblemJSON, got)
	}

	var problem Problem
	if err := json.NewDecoder(w.Body).Decode(&problem); err != nil {
		t.Fatalf("Failed to decode problem: %v", err)
	}
	if problem.Status != http.StatusNotFound {
		t.Errorf("Expected problem status 404, got %d", problem.Status)
	}
}

func TestFileRead_Directory_Returns409(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "POST", "/dirs/docs", nil)
	w := doRequest(t, router, "GET", "/files/docs", nil)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestFileStat_Head(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "PUT", "/files/file.txt", []byte("hello"))

	w := doRequest(t, router, "HEAD", "/files/file.txt", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if got := w.Header().Get("Content-Length"); got != "5" {
		t.Errorf("Expected Content-Length 5, got '%s'", got)
	}
	if got := w.Header().Get("Content-Type"); got != "application/octet-stream" {
		t.Errorf("Expected Content-Type application/octet-stream, got '%s'", got)
	}
	if w.Header().Get("Last-Modified") == "" {
		t.Error("Expected Last-Modified to be set")
	}
}

func TestFileStat_HeadDirectory(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "POST", "/dirs/docs", nil)

	w := doRequest(t, router, "HEAD", "/files/docs", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/x-directory" {
		t.Errorf("Expected Content-Type application/x-directory, got '%s'", got)
	}
	if got := w.Header().Get("X-Kvfs-Mode"); got != "40755" {
		t.Errorf("Expected X-Kvfs-Mode 40755, got '%s'", got)
	}
}

func TestFileDelete_RemovesFileAndIsIdempotent(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "PUT", "/files/file.txt", []byte("data"))

	w := doRequest(t, router, "DELETE", "/files/file.txt", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected status %d, got %d", http.StatusNoContent, w.Code)
	}

	r := doRequest(t, router, "GET", "/files/file.txt", nil)
	if r.Code != http.StatusNotFound {
		t.Errorf("Expected status %d after delete, got %d", http.StatusNotFound, r.Code)
	}

	// Deleting again succeeds: cleanup of missing paths is tolerated.
	w = doRequest(t, router, "DELETE", "/files/file.txt", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status %d on repeat delete, got %d", http.StatusNoContent, w.Code)
	}
}

func TestFileDelete_NonEmptyDirectory_Returns409(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "POST", "/dirs/data", nil)
	doRequest(t, router, "PUT", "/files/data/file.txt", []byte("x"))

	w := doRequest(t, router, "DELETE", "/files/data", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestFileDelete_Recursive(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "POST", "/dirs/a", nil)
	doRequest(t, router, "POST", "/dirs/a/b", nil)
	doRequest(t, router, "PUT", "/files/a/b/c.txt", []byte("deep"))
	doRequest(t, router, "PUT", "/files/a/d.txt", []byte("shallow"))

	w := doRequest(t, router, "DELETE", "/files/a?recursive=true", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusNoContent, w.Code, w.Body.String())
	}

	r := doRequest(t, router, "GET", "/meta/a", nil)
	if r.Code != http.StatusNotFound {
		t.Errorf("Expected status %d for deleted tree, got %d", http.StatusNotFound, r.Code)
	}

	l := doRequest(t, router, "GET", "/dirs/", nil)
	var listing ListResponse
	if err := json.NewDecoder(l.Body).Decode(&listing); err != nil {
		t.Fatalf("Failed to decode listing: %v", err)
	}
	for _, entry := range listing.Entries {
		if entry.Name == "a" {
			t.Error("Expected 'a' to be gone from the root listing")
		}
	}
}

func TestFileDelete_Root_Returns400(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(t, router, "DELETE", "/files/", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestMetadata_Get(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "PUT", "/files/file.txt", []byte("hello"))

	w := doRequest(t, router, "GET", "/meta/file.txt", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp MetadataResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode metadata: %v", err)
	}

	if resp.Path != "/file.txt" {
		t.Errorf("Expected path '/file.txt', got '%s'", resp.Path)
	}
	if resp.Type != "file" {
		t.Errorf("Expected type 'file', got '%s'", resp.Type)
	}
	if resp.Size != 5 {
		t.Errorf("Expected size 5, got %d", resp.Size)
	}
	if resp.NumChunks != 1 {
		t.Errorf("Expected 1 chunk, got %d", resp.NumChunks)
	}
	if resp.Mtime == 0 || resp.Ctime == 0 {
		t.Error("Expected timestamps to be set")
	}
}

func TestMetadata_SetModePreservesTypeBits(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "PUT", "/files/file.txt", []byte("hello"))

	// 0o600 == 384
	body := []byte(`{"mode": 384}`)
	w := doRequest(t, router, "PATCH", "/meta/file.txt", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp MetadataResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode metadata: %v", err)
	}

	if resp.Mode != fs.ModeRegular|0o600 {
		t.Errorf("Expected mode %o, got %o", fs.ModeRegular|0o600, resp.Mode)
	}
	if resp.Type != "file" {
		t.Errorf("Expected type to stay 'file', got '%s'", resp.Type)
	}
}

func TestMetadata_SetOwner(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "PUT", "/files/file.txt", []byte("hello"))

	w := doRequest(t, router, "PATCH", "/meta/file.txt", []byte(`{"uid": 501, "gid": 20}`))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp MetadataResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode metadata: %v", err)
	}
	if resp.UID != 501 || resp.GID != 20 {
		t.Errorf("Expected owner 501:20, got %d:%d", resp.UID, resp.GID)
	}
}

func TestMetadata_TruncateShrinks(t *testing.T) {
	router, _ := newTestRouter(t)

	content := chunkSpanningContent(3000)
	doRequest(t, router, "PUT", "/files/big.bin", content)

	w := doRequest(t, router, "PATCH", "/meta/big.bin", []byte(`{"size": 100}`))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp MetadataResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode metadata: %v", err)
	}
	if resp.Size != 100 {
		t.Errorf("Expected size 100, got %d", resp.Size)
	}
	if resp.NumChunks != 1 {
		t.Errorf("Expected 1 chunk after shrink, got %d", resp.NumChunks)
	}

	r := doRequest(t, router, "GET", "/files/big.bin", nil)
	if !bytes.Equal(r.Body.Bytes(), content[:100]) {
		t.Error("Expected the first 100 bytes to survive the truncate")
	}
}

func TestMetadata_TruncateGrowsSparse(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "PUT", "/files/file.bin", []byte("abc"))

	w := doRequest(t, router, "PATCH", "/meta/file.bin", []byte(`{"size": 4096}`))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp MetadataResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode metadata: %v", err)
	}
	if resp.Size != 4096 {
		t.Errorf("Expected size 4096, got %d", resp.Size)
	}
	if resp.NumChunks != 2 {
		t.Errorf("Expected 2 chunks, got %d", resp.NumChunks)
	}

	r := doRequest(t, router, "GET", "/files/file.bin", nil)
	body := r.Body.Bytes()
	if len(body) != 4096 {
		t.Fatalf("Expected 4096 bytes, got %d", len(body))
	}
	if !bytes.Equal(body[:3], []byte("abc")) {
		t.Error("Expected original prefix to survive the grow")
	}
	if !bytes.Equal(body[3:], make([]byte, 4093)) {
		t.Error("Expected the extension to read back as zeros")
	}
}

func TestMetadata_SizeOnDirectory_Returns409(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "POST", "/dirs/docs", nil)

	w := doRequest(t, router, "PATCH", "/meta/docs", []byte(`{"size": 10}`))
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestMetadata_SetTimes(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, "PUT", "/files/file.txt", []byte("x"))

	w := doRequest(t, router, "PATCH", "/meta/file.txt", []byte(`{"atime": 1000000, "mtime": 2000000}`))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp MetadataResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode metadata: %v", err)
	}
	if resp.Atime != 1000000 {
		t.Errorf("Expected atime 1000000, got %d", resp.Atime)
	}
	if resp.Mtime != 2000000 {
		t.Errorf("Expected mtime 2000000, got %d", resp.Mtime)
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		size       uint64
		wantOffset uint64
		wantLength uint64
		wantOK     bool
		wantErr    bool
	}{
		{"closed range", "bytes=0-99", 1000, 0, 100, true, false},
		{"interior range", "bytes=500-749", 1000, 500, 250, true, false},
		{"open ended", "bytes=900-", 1000, 900, 100, true, false},
		{"suffix", "bytes=-50", 1000, 950, 50, true, false},
		{"suffix larger than file", "bytes=-5000", 1000, 0, 1000, true, false},
		{"end clipped", "bytes=990-2000", 1000, 990, 10, true, false},
		{"start at EOF", "bytes=1000-1100", 1000, 0, 0, false, true},
		{"suffix zero", "bytes=-0", 1000, 0, 0, false, true},
		{"any range on empty file", "bytes=-10", 0, 0, 0, false, true},
		{"not bytes unit", "items=0-5", 1000, 0, 0, false, false},
		{"multi range ignored", "bytes=0-1,5-6", 1000, 0, 0, false, false},
		{"garbage ignored", "bytes=abc", 1000, 0, 0, false, false},
		{"inverted ignored", "bytes=500-100", 1000, 0, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, length, ok, err := parseRange(tt.header, tt.size)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRange(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
			}
			if ok != tt.wantOK {
				t.Fatalf("parseRange(%q) ok = %v, want %v", tt.header, ok, tt.wantOK)
			}
			if ok && (offset != tt.wantOffset || length != tt.wantLength) {
				t.Errorf("parseRange(%q) = (%d, %d), want (%d, %d)",
					tt.header, offset, length, tt.wantOffset, tt.wantLength)
			}
		})
	}
}
