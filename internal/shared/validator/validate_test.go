package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	BidderID string `json:"bidder_id" validate:"required,uuid"`
	Title    string `json:"title" validate:"omitempty,min=3"`
}

func TestStruct(t *testing.T) {
	details, err := Struct(sample{BidderID: "7b0c1f8e-3a44-4c1a-9d55-0f1e2d3c4b5a"})
	require.NoError(t, err)
	assert.Empty(t, details)

	details, err = Struct(sample{BidderID: "nope", Title: "ab"})
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "BidderID", details[0].Field)
	assert.Contains(t, details[0].Issue, "uuid")
	assert.Equal(t, "Title", details[1].Field)
}

func TestStruct_NotAStruct(t *testing.T) {
	_, err := Struct(42)
	require.Error(t, err)
}
