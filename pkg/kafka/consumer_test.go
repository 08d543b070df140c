package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Reason string `json:"reason"`
		Count  int    `json:"count"`
	}

	got, err := DecodeJSON[payload]([]byte(`{"reason": "publish", "count": 3}`))
	require.NoError(t, err)
	assert.Equal(t, payload{Reason: "publish", Count: 3}, got)
}

func TestDecodeJSONInvalid(t *testing.T) {
	_, err := DecodeJSON[map[string]string]([]byte(`{broken`))
	assert.Error(t, err)
}
