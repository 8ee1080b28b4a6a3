package mapping_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/searchkit/pkg/mapping"
)

type address struct {
	City string `json:"city"`
}

type customer struct {
	ID        string            `json:"id"`
	Age       int32             `json:"age"`
	Balance   float64           `json:"balance"`
	Score     float32           `json:"score"`
	Active    bool              `json:"active"`
	Visits    int64             `json:"visits"`
	CreatedAt time.Time         `json:"created_at"`
	Tags      []string          `json:"tags"`
	Address   *address          `json:"address"`
	Labels    map[string]string `json:"labels"`
	Avatar    []byte            `json:"avatar"`
	Secret    string            `json:"-"`
	Untagged  string
	internal  string
}

type node struct {
	Name     string `json:"name"`
	Children []node `json:"children"`
}

type audit struct {
	CreatedBy string    `json:"created_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

type versioned struct {
	Name string `json:"name"`
}

type Stamp struct {
	Rev int64 `json:"rev"`
}

type order struct {
	audit
	*versioned `json:"version"`
	Stamp      `json:",omitempty"`
	Name       string `json:"name"`
	Total      float64
}

type fixed struct {
	Name string
}

func (fixed) MappingProperties() map[string]mapping.Property {
	return map[string]mapping.Property{"name": {"type": "keyword"}}
}

func TestInfer(t *testing.T) {
	t.Run("struct fields", func(t *testing.T) {
		m := mapping.Infer[customer]()
		p := m.Properties

		assert.Equal(t, "text", p["id"]["type"])
		assert.Contains(t, p["id"], "fields")
		assert.Equal(t, "integer", p["age"]["type"])
		assert.Equal(t, "double", p["balance"]["type"])
		assert.Equal(t, "float", p["score"]["type"])
		assert.Equal(t, "boolean", p["active"]["type"])
		assert.Equal(t, "long", p["visits"]["type"])
		assert.Equal(t, "date", p["created_at"]["type"])
		assert.Equal(t, "text", p["tags"]["type"])
		assert.Equal(t, "object", p["labels"]["type"])
		assert.Equal(t, "binary", p["avatar"]["type"])
		assert.Contains(t, p, "Untagged")
		assert.NotContains(t, p, "Secret")
		assert.NotContains(t, p, "internal")

		nested, ok := p["address"]["properties"].(map[string]mapping.Property)
		require.True(t, ok)
		assert.Equal(t, "text", nested["city"]["type"])
	})

	t.Run("pointer type", func(t *testing.T) {
		assert.Equal(t, mapping.Infer[customer](), mapping.Infer[*customer]())
	})

	t.Run("recursive type terminates", func(t *testing.T) {
		m := mapping.Infer[node]()
		assert.Equal(t, "text", m.Properties["name"]["type"])
		assert.Equal(t, "object", m.Properties["children"]["type"])
	})

	t.Run("embedded structs follow json encoding", func(t *testing.T) {
		p := mapping.Infer[order]().Properties

		assert.Equal(t, "text", p["created_by"]["type"])
		assert.Equal(t, "date", p["updated_at"]["type"])
		assert.NotContains(t, p, "audit")

		version, ok := p["version"]["properties"].(map[string]mapping.Property)
		require.True(t, ok, "tagged embedded struct is a nested object")
		assert.Equal(t, "text", version["name"]["type"])

		assert.Equal(t, "text", p["name"]["type"])
		assert.Equal(t, "double", p["Total"]["type"])
		assert.Equal(t, "long", p["rev"]["type"])
		assert.Len(t, p, 6)
	})

	t.Run("custom mapper", func(t *testing.T) {
		m := mapping.Infer[fixed]()
		assert.Equal(t, "keyword", m.Properties["name"]["type"])
	})

	t.Run("map documents keep dynamic mapping", func(t *testing.T) {
		m := mapping.Infer[map[string]any]()
		body, err := json.Marshal(m)
		require.NoError(t, err)
		assert.JSONEq(t, `{"properties":{}}`, string(body))
	})
}
