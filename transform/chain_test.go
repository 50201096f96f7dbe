package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// renameStep moves from to to on the way up and back on the way down.
type renameStep struct{ from, to string }

func (s renameStep) Forwards(p *Payload, _ *Request) (*Payload, error) {
	p.Rename(s.from, s.to)
	return p, nil
}

func (s renameStep) Backwards(p *Payload, _ *Request, _ any) (*Payload, error) {
	p.Rename(s.to, s.from)
	return p, nil
}

type recordStep struct {
	index int
	seen  *[]int
}

func (s recordStep) Forwards(p *Payload, _ *Request) (*Payload, error) {
	*s.seen = append(*s.seen, s.index)
	return p, nil
}

func (s recordStep) Backwards(p *Payload, _ *Request, _ any) (*Payload, error) {
	*s.seen = append(*s.seen, s.index)
	return p, nil
}

func TestForward_AppliesInOrderAndLeavesInputAlone(t *testing.T) {
	var seen []int
	steps := []Step{
		{Index: 2, New: func() Transform { return recordStep{2, &seen} }},
		{Index: 3, New: func() Transform { return renameStep{"a", "b"} }},
		{Index: 4, New: func() Transform { return recordStep{4, &seen} }},
	}
	in := PayloadOf("a", 1)

	out, err := Forward("fam", steps, in, NewRequest(nil).WithVersion(1))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, seen)
	assert.Equal(t, []string{"b"}, out.Keys())
	assert.Equal(t, []string{"a"}, in.Keys())
}

func TestForwardBackward_RoundTrip(t *testing.T) {
	steps := []Step{
		{Index: 2, New: func() Transform { return renameStep{"test_field_one", "new_test_field"} }},
		{Index: 3, New: func() Transform { return renameStep{"two", "deux"} }},
	}
	in := PayloadOf("test_field_one", "v1", "two", 2, "keep", true)

	up, err := Forward("fam", steps, in, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"new_test_field": "v1", "deux": 2, "keep": true}, up.Map())

	rev := []Step{steps[1], steps[0]}
	down, err := Backward("fam", rev, up, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, in.Map(), down.Map())

	again, err := Forward("fam", steps, down, nil)
	require.NoError(t, err)
	assert.Equal(t, up.Map(), again.Map())
}

func TestForward_EmptyChainReturnsInput(t *testing.T) {
	in := PayloadOf("a", 1)
	out, err := Forward("fam", nil, in, nil)
	require.NoError(t, err)
	assert.Same(t, in, out)
}

func TestBackward_StepErrorStopsChain(t *testing.T) {
	boom := errors.New("boom")
	var seen []int
	steps := []Step{
		{Index: 5, New: func() Transform { return recordStep{5, &seen} }},
		{Index: 4, New: func() Transform {
			return Func{Backward: func(*Payload, *Request, any) (*Payload, error) { return nil, boom }}
		}},
		{Index: 3, New: func() Transform { return recordStep{3, &seen} }},
	}

	out, err := Backward("fam", steps, PayloadOf("a", 1), nil, "instance")
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{5}, seen)

	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 4, se.Index)
	assert.Equal(t, Backwards, se.Direction)
	assert.Equal(t, "transform fam step 0004 backwards: boom", se.Error())
}

func TestUnimplementedTransform(t *testing.T) {
	var tr Transform = UnimplementedTransform{}
	_, err := tr.Forwards(NewPayload(), nil)
	assert.ErrorIs(t, err, ErrNotImplemented)
	_, err = tr.Backwards(NewPayload(), nil, nil)
	assert.ErrorIs(t, err, ErrNotImplemented)

	_, err = Func{}.Forwards(NewPayload(), nil)
	assert.ErrorIs(t, err, ErrNotImplemented)

	_, err = Forward("fam", []Step{{Index: 2, New: func() Transform { return UnimplementedTransform{} }}}, NewPayload(), nil)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestRequest_VersionPresence(t *testing.T) {
	var nilReq *Request
	_, ok := nilReq.Version()
	assert.False(t, ok)

	r := NewRequest("raw")
	_, ok = r.Version()
	assert.False(t, ok)

	zero := r.WithVersion(0)
	v, ok := zero.Version()
	assert.True(t, ok)
	assert.Equal(t, 0, v)
	assert.Equal(t, "raw", zero.Raw())

	_, ok = r.Version()
	assert.False(t, ok, "WithVersion must not modify the receiver")
}
