package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"versiond/transform"
)

func mustPayload(t *testing.T, raw string) *transform.Payload {
	t.Helper()
	p := transform.NewPayload()
	require.NoError(t, json.Unmarshal([]byte(raw), p))
	return p
}
