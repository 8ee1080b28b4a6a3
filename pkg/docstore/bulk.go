package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/dmitrymomot/searchkit/pkg/logger"
)

// emptyBatch is the diagnostic of a mutation that had nothing to send.
const emptyBatch = "Valid response: empty batch, no request sent"

type bulkAction struct {
	action string // index, update or delete
	id     string
	source any
}

type bulkResult struct {
	Errors bool                     `json:"errors"`
	Items  []map[string]bulkOutcome `json:"items"`
}

type bulkOutcome struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Result string `json:"result"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

// encodeBulk renders actions as an NDJSON bulk body.
func encodeBulk(actions []bulkAction) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for _, a := range actions {
		meta := map[string]any{}
		if a.id != "" {
			meta["_id"] = a.id
		}
		if err := enc.Encode(map[string]any{a.action: meta}); err != nil {
			return nil, err
		}
		if a.source == nil {
			continue
		}
		if err := enc.Encode(a.source); err != nil {
			return nil, fmt.Errorf("encode %s source: %w", a.action, err)
		}
	}
	return &buf, nil
}

// bulk sends actions to index in a single request. The response is valid
// only if the call succeeded and the engine reported no item errors.
func (s *Store) bulk(ctx context.Context, op, index string, actions []bulkAction) Response {
	if len(actions) == 0 {
		return s.report(ctx, op, index, 0, NewResponse(true, emptyBatch))
	}
	_, _, resp := s.sendBulk(ctx, index, actions)
	return s.report(ctx, op, index, len(actions), resp)
}

// sendBulk performs the bulk call and decodes its items. The decoded result is
// only meaningful when resp is valid.
func (s *Store) sendBulk(ctx context.Context, index string, actions []bulkAction) (call, bulkResult, Response) {
	var result bulkResult

	body, err := encodeBulk(actions)
	if err != nil {
		return call{}, result, NewResponse(false, "Invalid request: "+err.Error())
	}

	c := s.perform(ctx, http.MethodPost, "/"+index+"/_bulk", opensearchapi.BulkRequest{
		Index:   index,
		Body:    body,
		Refresh: s.refresh,
	})
	if !c.ok() {
		return c, result, c.response()
	}

	if err := json.Unmarshal(c.body, &result); err != nil {
		return c, result, NewResponse(false,
			fmt.Sprintf("Invalid response built from a successful (%d) low level call on %s %s: decode bulk response: %v", c.status, c.method, c.path, err))
	}
	if result.Errors {
		return c, result, NewResponse(false,
			fmt.Sprintf("Invalid response built from a successful (%d) low level call on %s %s: %s", c.status, c.method, c.path, result.summary()))
	}
	return c, result, c.response()
}

// first returns the outcome of the first item regardless of its action.
func (r bulkResult) first() (bulkOutcome, bool) {
	if len(r.Items) == 0 {
		return bulkOutcome{}, false
	}
	for _, outcome := range r.Items[0] {
		return outcome, true
	}
	return bulkOutcome{}, false
}

// summary describes item failures without exposing them individually.
func (r bulkResult) summary() string {
	failed := 0
	first := ""
	for _, item := range r.Items {
		for _, outcome := range item {
			if outcome.Error == nil {
				continue
			}
			failed++
			if first == "" {
				first = fmt.Sprintf("[%s] %s", outcome.Error.Type, outcome.Error.Reason)
			}
		}
	}
	if failed == 0 {
		return "bulk request reported errors"
	}
	return fmt.Sprintf("%d of %d bulk items failed; first error: %s", failed, len(r.Items), first)
}

// report logs the outcome of a mutation and returns it unchanged.
func (s *Store) report(ctx context.Context, op, index string, n int, resp Response) Response {
	if resp.Valid {
		s.logger.DebugContext(ctx, "opensearch operation",
			logger.Operation(op),
			logger.Index(index),
			logger.Count(n),
		)
		return resp
	}
	s.logger.WarnContext(ctx, "opensearch operation rejected",
		logger.Operation(op),
		logger.Index(index),
		logger.Count(n),
		logger.Message(resp.Message),
	)
	return resp
}
