package docstore

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/dmitrymomot/searchkit/pkg/property"
)

type searchResult[T any] struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Total hitsTotal `json:"total"`
		Hits  []hit[T]  `json:"hits"`
	} `json:"hits"`
}

type hit[T any] struct {
	ID     string `json:"_id"`
	Source T      `json:"_source"`
}

// hitsTotal accepts both {"value": n} and the legacy plain integer form.
type hitsTotal int64

func (t *hitsTotal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] != '{' {
		n, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return err
		}
		*t = hitsTotal(n)
		return nil
	}
	var obj struct {
		Value int64 `json:"value"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*t = hitsTotal(obj.Value)
	return nil
}

func appendHits[T any](dst []T, hits []hit[T], forceID bool) []T {
	for _, h := range hits {
		doc := h.Source
		if forceID {
			doc = property.WithIdentifier(doc, h.ID)
		}
		dst = append(dst, doc)
	}
	return dst
}

func matchAll() map[string]any {
	return map[string]any{"match_all": map[string]any{}}
}

func matchPhrase(field, phrase string) map[string]any {
	return map[string]any{"match_phrase": map[string]any{field: phrase}}
}

func idsQuery(ids []string) map[string]any {
	return map[string]any{"ids": map[string]any{"values": ids}}
}
