package stdout

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"versiond/sink"
)

func TestDriver_PushWritesLine(t *testing.T) {
	a, err := sink.NewAdapter("stdout")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, a.Configure(Config{PrintCounter: true, Output: &buf}))
	require.NoError(t, a.Push(&sink.Event{
		Resource: "widgets", ID: "w1", Action: "created", Version: 1,
		MediaType: "application/json", Value: []byte(`{"test_field_one":"x"}`),
	}))
	require.NoError(t, a.Push(&sink.Event{Resource: "widgets", ID: "w1", Action: "updated", Version: 1}))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Equal(t, `[sink 000001] widgets/w1 created v1 application/json {"test_field_one":"x"}`, string(lines[0]))
	assert.True(t, bytes.HasPrefix(lines[1], []byte("[sink 000002] widgets/w1 updated v1")))
	require.NoError(t, a.Close())
}

func TestDriver_ConfigureRejectsWrongType(t *testing.T) {
	d := &driver{}
	assert.Error(t, d.Configure("nope"))
}
