package opensearchtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Body:   string(body),
	})

	if s.username != "" {
		u, p, ok := r.BasicAuth()
		if !ok || u != s.username || p != s.password {
			writeError(w, http.StatusUnauthorized, "security_exception", "missing authentication credentials for REST request")
			return
		}
	}

	for suffix, status := range s.failures {
		if strings.HasSuffix(r.URL.Path, suffix) {
			writeError(w, status, "injected_failure", "failure injected for "+r.URL.Path)
			return
		}
	}

	segs := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/":
		s.root(w, r)
	case segs[0] == "_nodes":
		s.nodes(w)
	case segs[0] == "_search" && len(segs) >= 2 && segs[1] == "scroll":
		if r.Method == http.MethodDelete {
			s.clearScroll(w, segs, body)
			return
		}
		s.advanceScroll(w, r, segs, body)
	case segs[0] == "_bulk":
		s.bulk(w, "", body)
	case len(segs) == 2 && segs[1] == "_mapping" && r.Method == http.MethodPut:
		s.putMapping(w, segs[0], body)
	case len(segs) == 2 && segs[1] == "_search":
		s.search(w, r, segs[0], body)
	case len(segs) == 2 && segs[1] == "_bulk":
		s.bulk(w, segs[0], body)
	case len(segs) == 2 && segs[1] == "_delete_by_query":
		s.deleteByQuery(w, segs[0], body)
	case len(segs) == 3 && segs[1] == "_doc" && r.Method == http.MethodGet:
		s.get(w, segs[0], unescape(segs[2]))
	case len(segs) == 3 && segs[1] == "_doc" && r.Method == http.MethodDelete:
		s.delete(w, segs[0], unescape(segs[2]))
	default:
		writeError(w, http.StatusNotFound, "no_handler_found_exception", "no handler found for uri ["+r.URL.Path+"] and method ["+r.Method+"]")
	}
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	if s.unhealthy {
		writeError(w, http.StatusServiceUnavailable, "cluster_block_exception", "cluster is unavailable")
		return
	}
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":         "fake-node",
		"cluster_name": "opensearchtest",
		"version": map[string]any{
			"distribution": "opensearch",
			"number":       "2.11.0",
		},
		"tagline": "The OpenSearch Project: https://opensearch.org/",
	})
}

func (s *Server) nodes(w http.ResponseWriter) {
	u, _ := url.Parse(s.URL)
	writeJSON(w, http.StatusOK, map[string]any{
		"nodes": map[string]any{
			"fake-node": map[string]any{
				"name":  "fake-node",
				"roles": []string{"cluster_manager", "data", "ingest"},
				"http":  map[string]any{"publish_address": u.Host},
			},
		},
	})
}

func (s *Server) putMapping(w http.ResponseWriter, name string, body []byte) {
	idx := s.indexFor(name, false)
	if idx == nil {
		indexNotFound(w, name)
		return
	}
	var m struct {
		Properties map[string]any `json:"properties"`
	}
	if err := json.Unmarshal(body, &m); err != nil || m.Properties == nil {
		writeError(w, http.StatusBadRequest, "mapper_parsing_exception", "mapping must contain properties")
		return
	}
	idx.mapping = append(json.RawMessage(nil), body...)
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
}

type searchBody struct {
	Query map[string]any `json:"query"`
	Size  *int           `json:"size"`
	From  *int           `json:"from"`
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, name string, body []byte) {
	idx := s.indexFor(name, false)
	if idx == nil {
		indexNotFound(w, name)
		return
	}

	var req searchBody
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "parsing_exception", err.Error())
			return
		}
	}

	size, from := 10, 0
	if req.Size != nil {
		size = *req.Size
	}
	if req.From != nil {
		from = *req.From
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil {
		size = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("from")); err == nil {
		from = v
	}

	ids := idx.match(req.Query)
	page, rest := window(ids, from, size)

	resp := map[string]any{
		"took":      1,
		"timed_out": false,
		"hits": map[string]any{
			"total": map[string]any{"value": len(ids), "relation": "eq"},
			"hits":  idx.hits(name, page),
		},
	}
	if r.URL.Query().Get("scroll") != "" {
		id := s.nextID("scroll-")
		s.scrolls[id] = &cursor{index: name, ids: rest, size: size}
		resp["_scroll_id"] = id
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) advanceScroll(w http.ResponseWriter, r *http.Request, segs []string, body []byte) {
	var req struct {
		ScrollID string `json:"scroll_id"`
	}
	_ = json.Unmarshal(body, &req)
	id := req.ScrollID
	if id == "" {
		id = r.URL.Query().Get("scroll_id")
	}
	if id == "" && len(segs) > 2 {
		id = unescape(segs[2])
	}

	c, ok := s.scrolls[id]
	if !ok {
		writeError(w, http.StatusNotFound, "search_context_missing_exception", "No search context found for id ["+id+"]")
		return
	}
	delete(s.scrolls, id)

	page, rest := window(c.ids, 0, c.size)
	c.ids = rest
	next := s.nextID("scroll-")
	s.scrolls[next] = c

	var hits []map[string]any
	if idx := s.indexFor(c.index, false); idx != nil {
		hits = idx.hits(c.index, page)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"_scroll_id": next,
		"took":       1,
		"timed_out":  false,
		"hits": map[string]any{
			"total": map[string]any{"value": len(page) + len(rest), "relation": "eq"},
			"hits":  hits,
		},
	})
}

func (s *Server) clearScroll(w http.ResponseWriter, segs []string, body []byte) {
	var ids []string
	var req struct {
		ScrollID json.RawMessage `json:"scroll_id"`
	}
	if err := json.Unmarshal(body, &req); err == nil && len(req.ScrollID) > 0 {
		var one string
		if json.Unmarshal(req.ScrollID, &one) == nil {
			ids = append(ids, one)
		} else {
			_ = json.Unmarshal(req.ScrollID, &ids)
		}
	}
	if len(segs) > 2 {
		ids = append(ids, strings.Split(unescape(segs[2]), ",")...)
	}

	freed := 0
	for _, id := range ids {
		if id == "_all" {
			freed += len(s.scrolls)
			clear(s.scrolls)
			continue
		}
		if _, ok := s.scrolls[id]; ok {
			delete(s.scrolls, id)
			freed++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"succeeded": true, "num_freed": freed})
}

func (s *Server) get(w http.ResponseWriter, name, id string) {
	idx := s.indexFor(name, false)
	if idx == nil {
		indexNotFound(w, name)
		return
	}
	doc, ok := idx.docs[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"_index": name, "_id": id, "found": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"_index":   name,
		"_id":      id,
		"_version": 1,
		"found":    true,
		"_source":  doc,
	})
}

func (s *Server) delete(w http.ResponseWriter, name, id string) {
	idx := s.indexFor(name, false)
	if idx == nil {
		indexNotFound(w, name)
		return
	}
	if !idx.remove(id) {
		writeJSON(w, http.StatusNotFound, map[string]any{"_index": name, "_id": id, "result": "not_found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"_index": name, "_id": id, "result": "deleted"})
}

func (s *Server) deleteByQuery(w http.ResponseWriter, name string, body []byte) {
	idx := s.indexFor(name, false)
	if idx == nil {
		indexNotFound(w, name)
		return
	}
	var req searchBody
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "parsing_exception", err.Error())
		return
	}
	ids := idx.match(req.Query)
	for _, id := range ids {
		idx.remove(id)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"took":      1,
		"timed_out": false,
		"total":     len(ids),
		"deleted":   len(ids),
		"failures":  []any{},
	})
}

type bulkOp struct {
	action string
	index  string
	id     string
	source map[string]any
}

func (s *Server) bulk(w http.ResponseWriter, defaultIndex string, body []byte) {
	ops, err := parseBulk(defaultIndex, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "action_request_validation_exception", err.Error())
		return
	}

	items := make([]map[string]any, 0, len(ops))
	failed := false
	for _, op := range ops {
		item := s.applyBulkOp(op)
		if _, hasErr := item["error"]; hasErr {
			failed = true
		}
		items = append(items, map[string]any{op.action: item})
	}
	writeJSON(w, http.StatusOK, map[string]any{"took": 1, "errors": failed, "items": items})
}

func parseBulk(defaultIndex string, body []byte) ([]bulkOp, error) {
	var lines [][]byte
	for _, l := range bytes.Split(body, []byte("\n")) {
		if len(bytes.TrimSpace(l)) > 0 {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("request body is required")
	}

	var ops []bulkOp
	for i := 0; i < len(lines); i++ {
		var header map[string]map[string]any
		if err := json.Unmarshal(lines[i], &header); err != nil || len(header) != 1 {
			return nil, fmt.Errorf("malformed action/metadata line [%d]", i+1)
		}
		for action, meta := range header {
			op := bulkOp{action: action, index: defaultIndex}
			if v, ok := meta["_index"].(string); ok && v != "" {
				op.index = v
			}
			op.id, _ = meta["_id"].(string)
			if op.index == "" {
				return nil, fmt.Errorf("index is missing")
			}

			switch action {
			case "index", "create", "update":
				if action == "update" && op.id == "" {
					return nil, fmt.Errorf("Validation Failed: 1: id is missing;")
				}
				i++
				if i >= len(lines) {
					return nil, fmt.Errorf("missing source for action [%s]", action)
				}
				if err := json.Unmarshal(lines[i], &op.source); err != nil {
					return nil, fmt.Errorf("malformed source line [%d]", i+1)
				}
			case "delete":
				if op.id == "" {
					return nil, fmt.Errorf("Validation Failed: 1: id is missing;")
				}
			default:
				return nil, fmt.Errorf("unknown action [%s]", action)
			}
			ops = append(ops, op)
		}
	}
	return ops, nil
}

func (s *Server) applyBulkOp(op bulkOp) map[string]any {
	item := map[string]any{"_index": op.index}

	switch op.action {
	case "index", "create":
		if op.id == "" {
			op.id = s.nextID("auto-")
		}
		idx := s.indexFor(op.index, true)
		_, exists := idx.docs[op.id]
		item["_id"] = op.id
		if exists && op.action == "create" {
			return withError(item, http.StatusConflict, "version_conflict_engine_exception", "document already exists")
		}
		idx.put(op.id, op.source)
		if exists {
			item["status"], item["result"] = http.StatusOK, "updated"
		} else {
			item["status"], item["result"] = http.StatusCreated, "created"
		}
	case "update":
		item["_id"] = op.id
		idx := s.indexFor(op.index, true)
		partial, _ := op.source["doc"].(map[string]any)
		if current, ok := idx.docs[op.id]; ok {
			for k, v := range partial {
				current[k] = v
			}
			item["status"], item["result"] = http.StatusOK, "updated"
			return item
		}
		if upsert, ok := op.source["upsert"].(map[string]any); ok {
			idx.put(op.id, upsert)
		} else if asUpsert, _ := op.source["doc_as_upsert"].(bool); asUpsert && partial != nil {
			idx.put(op.id, partial)
		} else {
			return withError(item, http.StatusNotFound, "document_missing_exception", "["+op.id+"]: document missing")
		}
		item["status"], item["result"] = http.StatusCreated, "created"
	case "delete":
		item["_id"] = op.id
		idx := s.indexFor(op.index, false)
		if idx != nil && idx.remove(op.id) {
			item["status"], item["result"] = http.StatusOK, "deleted"
		} else {
			item["status"], item["result"] = http.StatusNotFound, "not_found"
		}
	}
	return item
}

func (idx *index) match(q map[string]any) []string {
	if len(q) == 0 {
		return append([]string(nil), idx.order...)
	}
	if _, ok := q["match_all"]; ok {
		return append([]string(nil), idx.order...)
	}

	if ids, ok := q["ids"].(map[string]any); ok {
		wanted := make(map[string]bool)
		values, _ := ids["values"].([]any)
		for _, v := range values {
			if s, ok := v.(string); ok {
				wanted[s] = true
			}
		}
		return idx.filter(func(id string, _ map[string]any) bool { return wanted[id] })
	}

	if mp, ok := q["match_phrase"].(map[string]any); ok {
		for field, cond := range mp {
			phrase, _ := cond.(string)
			if m, ok := cond.(map[string]any); ok {
				phrase, _ = m["query"].(string)
			}
			field = strings.TrimSuffix(field, ".keyword")
			return idx.filter(func(_ string, doc map[string]any) bool {
				return phraseMatches(doc[field], phrase)
			})
		}
	}
	return nil
}

func (idx *index) filter(keep func(id string, doc map[string]any) bool) []string {
	out := []string{}
	for _, id := range idx.order {
		if keep(id, idx.docs[id]) {
			out = append(out, id)
		}
	}
	return out
}

func (idx *index) hits(name string, ids []string) []map[string]any {
	hits := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		doc, ok := idx.docs[id]
		if !ok {
			continue
		}
		hits = append(hits, map[string]any{
			"_index":  name,
			"_id":     id,
			"_score":  1.0,
			"_source": doc,
		})
	}
	return hits
}

func phraseMatches(value any, phrase string) bool {
	if phrase == "" || value == nil {
		return false
	}
	if list, ok := value.([]any); ok {
		for _, v := range list {
			if phraseMatches(v, phrase) {
				return true
			}
		}
		return false
	}
	return strings.Contains(strings.ToLower(fmt.Sprint(value)), strings.ToLower(phrase))
}

func window(ids []string, from, size int) (page, rest []string) {
	if from > len(ids) {
		from = len(ids)
	}
	end := from + size
	if size < 0 || end > len(ids) {
		end = len(ids)
	}
	return ids[from:end], ids[end:]
}

func unescape(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}

func withError(item map[string]any, status int, typ, reason string) map[string]any {
	item["status"] = status
	item["error"] = map[string]any{"type": typ, "reason": reason}
	return item
}

func indexNotFound(w http.ResponseWriter, name string) {
	writeError(w, http.StatusNotFound, "index_not_found_exception", "no such index ["+name+"]")
}

func writeError(w http.ResponseWriter, status int, typ, reason string) {
	cause := map[string]any{"type": typ, "reason": reason}
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"root_cause": []any{cause},
			"type":       typ,
			"reason":     reason,
		},
		"status": status,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
