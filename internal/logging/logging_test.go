package logging

import (
	"bytes"
	"encoding/json"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_WritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	}()

	Log(Fields{Service: "shop", OrderID: 3, Step: "payment", Status: "ok"})

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "shop", got["service"])
	assert.EqualValues(t, 3, got["order_id"])
	assert.Equal(t, "payment", got["step"])
	assert.NotContains(t, got, "customer_id")
	assert.NotEmpty(t, got["timestamp"])
}
