package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const mediaTypeJSON = "application/json"

// serviceRoot returns the organization root on a host-specific service.
func (t *toolset) serviceRoot(host string) string {
	return strings.TrimRight(host, "/") + "/" + url.PathEscape(t.org)
}

// sendJSON issues a request through the SDK's generic client so the
// connection's authorization and user agent apply, and decodes the JSON
// response into out.
func (t *toolset) sendJSON(ctx context.Context, method, root, path string, query url.Values, apiVersion string, body, out interface{}) error {
	conn, err := t.clients(ctx)
	if err != nil {
		return err
	}

	target := root + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	mediaType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
		mediaType = mediaTypeJSON
	}

	client := conn.GetClientByUrl(root)
	req, err := client.CreateRequestMessage(ctx, method, target, apiVersion, reader, mediaType, mediaTypeJSON, nil)
	if err != nil {
		return err
	}
	resp, err := client.SendRequest(req)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return client.UnmarshalBody(resp, out)
}
