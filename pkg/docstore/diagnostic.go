package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// call is a single round trip to the engine, captured for diagnostics.
type call struct {
	method string
	path   string
	status int
	body   []byte
	err    error
}

func (c call) ok() bool {
	return c.err == nil && c.status >= http.StatusOK && c.status < http.StatusMultipleChoices
}

// diagnostic renders the call the way responses and query errors report it.
func (c call) diagnostic() string {
	switch {
	case c.err != nil:
		return fmt.Sprintf("Invalid response built from an unsuccessful low level call on %s %s: %v", c.method, c.path, c.err)
	case !c.ok():
		return fmt.Sprintf("Invalid response built from an unsuccessful (%d) low level call on %s %s: %s", c.status, c.method, c.path, errorReason(c.body))
	default:
		return fmt.Sprintf("Valid response built from a successful (%d) low level call on %s %s", c.status, c.method, c.path)
	}
}

func (c call) response() Response {
	return NewResponse(c.ok(), c.diagnostic())
}

func (c call) queryError() error {
	return fmt.Errorf("%w: %s", ErrQueryFailed, c.diagnostic())
}

// perform runs req under the store's request timeout and reads the whole body.
func (s *Store) perform(ctx context.Context, method, path string, req opensearchapi.Request) call {
	c := call{method: method, path: path}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := req.Do(ctx, s.client)
	if err != nil {
		c.err = err
		return c
	}
	defer res.Body.Close()

	c.status = res.StatusCode
	c.body, c.err = io.ReadAll(res.Body)
	return c
}

// errorReason extracts "[type] reason" from an engine error body.
func errorReason(body []byte) string {
	var e struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && len(e.Error) > 0 {
		var detail struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		}
		if err := json.Unmarshal(e.Error, &detail); err == nil && detail.Type != "" {
			return fmt.Sprintf("[%s] %s", detail.Type, detail.Reason)
		}
		var plain string
		if err := json.Unmarshal(e.Error, &plain); err == nil {
			return plain
		}
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "empty response body"
	}
	return string(body)
}
