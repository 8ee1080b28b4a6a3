package property_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/searchkit/pkg/property"
)

type tracked struct {
	key string
}

func (t *tracked) GetID() string   { return t.key }
func (t *tracked) SetID(id string) { t.key = id }

type numbered struct {
	ID int64
}

// record is a map document that owns its identifier key.
type record map[string]any

func (r record) GetID() string {
	id, _ := r["id"].(string)
	return id
}

func (r record) SetID(id string) { r["id"] = id }

type anonymous struct {
	Name string
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name   string
		doc    any
		want   string
		wantOK bool
	}{
		{"struct field", product{ID: "p-1"}, "p-1", true},
		{"blank id", product{ID: "   "}, "", false},
		{"trimmed", product{ID: " p-2 "}, "p-2", true},
		{"numeric id", numbered{ID: 42}, "42", true},
		{"no id attribute", anonymous{Name: "x"}, "", false},
		{"identifiable pointer", &tracked{key: "t-1"}, "t-1", true},
		{"identifiable value", tracked{key: "t-2"}, "t-2", true},
		{"map", map[string]any{"id": "m-1"}, "m-1", true},
		{"nil map value", map[string]any{"id": nil}, "", false},
		{"identifiable map", record{"id": "r-1"}, "r-1", true},
		{"nil pointer", (*product)(nil), "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := property.Identifier(tt.doc)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithIdentifier(t *testing.T) {
	t.Run("reflective struct", func(t *testing.T) {
		got := property.WithIdentifier(product{Name: "x"}, "p-9")
		assert.Equal(t, "p-9", got.ID)
	})

	t.Run("identifiable pointer", func(t *testing.T) {
		doc := &tracked{}
		property.WithIdentifier(doc, "t-9")
		assert.Equal(t, "t-9", doc.key)
	})

	t.Run("identifiable value uses pointer receiver", func(t *testing.T) {
		got := property.WithIdentifier(tracked{}, "t-10")
		assert.Equal(t, "t-10", got.key)
	})

	t.Run("plain map without id key is unchanged", func(t *testing.T) {
		doc := map[string]any{"name": "x"}
		property.WithIdentifier(doc, "m-1")
		assert.NotContains(t, doc, "id")
	})

	t.Run("identifiable map gains the key", func(t *testing.T) {
		doc := record{"name": "x"}
		property.WithIdentifier(doc, "r-2")
		assert.Equal(t, "r-2", doc["id"])
	})

	t.Run("document without id is unchanged", func(t *testing.T) {
		doc := anonymous{Name: "x"}
		assert.Equal(t, doc, property.WithIdentifier(doc, "a-1"))
	})
}
