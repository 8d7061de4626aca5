package apiclient

// DirEntry is a single entry in a directory listing.
type DirEntry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
}

// Listing is a directory listing.
type Listing struct {
	Path    string     `json:"path"`
	Entries []DirEntry `json:"entries"`
	Count   int        `json:"count"`
}

// ListDir returns the entries of the directory at path, sorted by name.
// With resolve set, childless subdirectories are classified exactly at the
// cost of one extra metadata read per ambiguous entry.
func (c *Client) ListDir(path string, resolve bool) (*Listing, error) {
	target := dirsURL(path)
	if resolve {
		target += "?resolve=true"
	}
	return getResource[Listing](c, target)
}

// Mkdir creates a directory. Creating an existing directory is a no-op.
func (c *Client) Mkdir(path string) (*FileInfo, error) {
	var info FileInfo
	if err := c.post(dirsURL(path), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// MkdirAll creates a directory along with any missing ancestors.
func (c *Client) MkdirAll(path string) (*FileInfo, error) {
	var info FileInfo
	if err := c.post(dirsURL(path)+"?parents=true", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
