package docstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/searchkit/pkg/docstore"
)

func TestNewResponse(t *testing.T) {
	tests := []struct {
		name        string
		valid       bool
		diagnostic  string
		wantMessage string
	}{
		{
			name:        "valid with marker is canonical",
			valid:       true,
			diagnostic:  "Valid response built from a successful (200) low level call on POST /products/_bulk",
			wantMessage: docstore.SuccessMessage,
		},
		{
			name:        "marker is case insensitive",
			valid:       true,
			diagnostic:  "VALID RESPONSE",
			wantMessage: docstore.SuccessMessage,
		},
		{
			name:        "valid without marker keeps diagnostic",
			valid:       true,
			diagnostic:  "accepted",
			wantMessage: "accepted",
		},
		{
			name:        "invalid keeps diagnostic",
			valid:       false,
			diagnostic:  "Invalid response built from an unsuccessful (400) low level call",
			wantMessage: "Invalid response built from an unsuccessful (400) low level call",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := docstore.NewResponse(tt.valid, tt.diagnostic)
			assert.Equal(t, tt.valid, r.Valid)
			assert.Equal(t, tt.wantMessage, r.Message)
		})
	}
}

func TestResponseErr(t *testing.T) {
	assert.NoError(t, docstore.NewResponse(true, "valid response").Err())

	err := docstore.NewResponse(false, "boom").Err()
	assert.ErrorIs(t, err, docstore.ErrOperationRejected)
	assert.Contains(t, err.Error(), "boom")
}
