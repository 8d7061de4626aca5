package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// FileInfo mirrors the metadata document returned by the files API.
type FileInfo struct {
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

// IsDir reports whether the entry is a directory.
func (f *FileInfo) IsDir() bool {
	return f.Type == "directory"
}

// WriteResult is the response to a file write.
type WriteResult struct {
	FileInfo
	BytesWritten int `json:"bytes_written"`
}

// SetAttrRequest selects the metadata fields to change. Nil fields are left
// untouched.
type SetAttrRequest struct {
	Mode  *uint32 `json:"mode,omitempty"`
	UID   *uint32 `json:"uid,omitempty"`
	GID   *uint32 `json:"gid,omitempty"`
	Atime *int64  `json:"atime,omitempty"`
	Mtime *int64  `json:"mtime,omitempty"`
	Size  *uint64 `json:"size,omitempty"`
}

// escapeFilePath escapes each path segment while keeping the separators, so
// names with spaces or reserved characters survive the round trip.
func escapeFilePath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return ""
	}
	segments := strings.Split(trimmed, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

func filesURL(path string) string { return "/api/v1/files/" + escapeFilePath(path) }
func metaURL(path string) string  { return "/api/v1/meta/" + escapeFilePath(path) }
func dirsURL(path string) string  { return "/api/v1/dirs/" + escapeFilePath(path) }

// upload PUTs raw bytes to the target and decodes the write result.
func (c *Client) upload(target string, data []byte) (*WriteResult, error) {
	header := http.Header{}
	header.Set("Content-Type", "application/octet-stream")

	resp, err := c.doRaw(http.MethodPut, target, bytes.NewReader(data), header)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, errorFromResponse(resp.StatusCode, respBody)
	}

	var result WriteResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// Upload replaces the file at path with data, creating it when missing and
// truncating any previous content that was longer.
func (c *Client) Upload(path string, data []byte) (*WriteResult, error) {
	return c.upload(filesURL(path), data)
}

// UploadAt writes data at the given byte offset, leaving the rest of the
// file untouched. Writing past the end extends the file sparsely.
func (c *Client) UploadAt(path string, offset uint64, data []byte) (*WriteResult, error) {
	return c.upload(fmt.Sprintf("%s?offset=%d", filesURL(path), offset), data)
}

// download GETs raw bytes from the target with an optional Range header.
func (c *Client) download(target, rangeHeader string) ([]byte, error) {
	var header http.Header
	if rangeHeader != "" {
		header = http.Header{}
		header.Set("Range", rangeHeader)
	}

	resp, err := c.doRaw(http.MethodGet, target, nil, header)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, errorFromResponse(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// Download returns the full content of the file at path.
func (c *Client) Download(path string) ([]byte, error) {
	return c.download(filesURL(path), "")
}

// DownloadRange returns length bytes starting at offset. A length of zero
// means everything from offset to the end of the file. The server clips
// ranges extending past the end.
func (c *Client) DownloadRange(path string, offset, length uint64) ([]byte, error) {
	rangeHeader := fmt.Sprintf("bytes=%d-", offset)
	if length > 0 {
		rangeHeader = fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)
	}
	return c.download(filesURL(path), rangeHeader)
}

// Stat returns the metadata for the file or directory at path.
func (c *Client) Stat(path string) (*FileInfo, error) {
	return getResource[FileInfo](c, metaURL(path))
}

// SetAttr updates the selected metadata fields and returns the new record.
func (c *Client) SetAttr(path string, req *SetAttrRequest) (*FileInfo, error) {
	var info FileInfo
	if err := c.patch(metaURL(path), req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Truncate sets the file size, cutting content or sparsely extending it.
func (c *Client) Truncate(path string, size uint64) (*FileInfo, error) {
	return c.SetAttr(path, &SetAttrRequest{Size: &size})
}

// Remove deletes a file or an empty directory. Removing a missing path
// succeeds.
func (c *Client) Remove(path string) error {
	return deleteResource(c, filesURL(path))
}

// RemoveAll deletes path and everything below it.
func (c *Client) RemoveAll(path string) error {
	return deleteResource(c, filesURL(path)+"?recursive=true")
}
