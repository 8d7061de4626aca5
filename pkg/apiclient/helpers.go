package apiclient

// Generic JSON helpers shared by the resource files. Each wraps one of the
// client's raw verbs and decodes the response body into the caller's type,
// keeping the per-resource methods declarative.

// getResource GETs path and decodes the JSON response into T.
func getResource[T any](c *Client, path string) (*T, error) {
	var out T
	if err := c.get(path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// getList GETs path and decodes a JSON array response into a slice of T.
func getList[T any](c *Client, path string) ([]T, error) {
	var out []T
	if err := c.get(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// postResource POSTs body to path and decodes the JSON response into T.
func postResource[T any](c *Client, path string, body any) (*T, error) {
	var out T
	if err := c.post(path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// putResource PUTs body to path and decodes the JSON response into T.
func putResource[T any](c *Client, path string, body any) (*T, error) {
	var out T
	if err := c.put(path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// deleteResource DELETEs path, discarding any response body.
func deleteResource(c *Client, path string) error {
	return c.delete(path, nil)
}
