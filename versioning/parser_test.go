package versioning

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"versiond/codec"
	"versiond/transform"
)

const testMediaType = "application/vnd.test.testtype+json"

const testBody = `{"test_field_one":"test_one","test_field_two":"test_two","test_field_three":"test_three"}`

func versionedCtx(v int) context.Context {
	return transform.ContextWithRequest(context.Background(), transform.NewRequest("GET /").WithVersion(v))
}

func unversionedCtx() context.Context {
	return transform.ContextWithRequest(context.Background(), transform.NewRequest("GET /"))
}

// failReader fails the test if the parser reads the body.
type failReader struct{ t *testing.T }

func (f failReader) Read([]byte) (int, error) {
	f.t.Fatal("body must not be read")
	return 0, io.EOF
}

func TestParse_NoTransformBase(t *testing.T) {
	p := &Parser{MediaType: testMediaType}
	_, err := p.Parse(versionedCtx(1), failReader{t}, "")
	assert.ErrorIs(t, err, ErrTransformBaseNotDeclared)

	_, err = p.Parse(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrTransformBaseNotDeclared)
}

func TestParse_UnversionedReturnsDecodedData(t *testing.T) {
	res := &mockResolver{}
	p := &Parser{Base: testBase, MediaType: testMediaType, Resolver: res}

	got, err := p.Parse(unversionedCtx(), strings.NewReader(testBody), "")
	require.NoError(t, err)

	want, err := codec.JSON{}.Decode(strings.NewReader(testBody))
	require.NoError(t, err)
	assert.Equal(t, want.Map(), got.Map())
	assert.Equal(t, want.Keys(), got.Keys())
	res.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
}

func TestParse_NoRequestInContext(t *testing.T) {
	res := &mockResolver{}
	p := &Parser{Base: testBase, Resolver: res}

	got, err := p.Parse(context.Background(), strings.NewReader(testBody), "")
	require.NoError(t, err)
	assert.Equal(t, "test_one", got.Map()["test_field_one"])
	res.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
}

func TestParse_ResolvesForwardWithRequestVersion(t *testing.T) {
	res := &mockResolver{}
	res.On("Resolve", testBase, 1, false).Return([]transform.Step{}, nil).Once()
	p := &Parser{Base: testBase, MediaType: testMediaType, Resolver: res}

	_, err := p.Parse(versionedCtx(1), strings.NewReader(testBody), "")
	require.NoError(t, err)
	res.AssertExpectations(t)
	res.AssertNumberOfCalls(t, "Resolve", 1)
}

func TestParse_VersionZeroIsStillAVersion(t *testing.T) {
	res := &mockResolver{}
	res.On("Resolve", testBase, 0, false).Return([]transform.Step{}, nil).Once()
	p := &Parser{Base: testBase, Resolver: res}

	_, err := p.Parse(versionedCtx(0), strings.NewReader(testBody), "")
	require.NoError(t, err)
	res.AssertExpectations(t)
}

func TestParse_ThreadsForwardsThroughSteps(t *testing.T) {
	one, two := &recorder{name: "one"}, &recorder{name: "two"}
	res := &mockResolver{}
	res.On("Resolve", testBase, 1, false).Return([]transform.Step{one.step(2), two.step(3)}, nil)
	p := &Parser{Base: testBase, MediaType: testMediaType, Resolver: res}

	ctx := versionedCtx(1)
	got, err := p.Parse(ctx, strings.NewReader(testBody), "")
	require.NoError(t, err)

	req, _ := transform.RequestFromContext(ctx)
	require.Len(t, one.gotData, 1)
	assert.Equal(t, "test_one", one.gotData[0].Map()["test_field_one"])
	assert.Same(t, req, one.gotReq[0])

	require.Len(t, two.gotData, 1)
	assert.Equal(t, map[string]any{"from": "one"}, two.gotData[0].Map())
	assert.Same(t, req, two.gotReq[0])

	assert.Equal(t, map[string]any{"from": "two"}, got.Map())
}

func TestParse_EndToEndFromVersionOne(t *testing.T) {
	p := &Parser{Base: testBase, MediaType: testMediaType, Resolver: newTestResolver(t)}

	got, err := p.Parse(versionedCtx(1), strings.NewReader(`{"test_field_one":"value_one","test_field_two":"two"}`), "")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"test_field_two":             "two",
		"new_test_field":             "value_one",
		"new_related_object_id_list": []int{1, 2, 3, 4, 5},
	}, got.Map())
	assert.False(t, got.Has("test_field_one"))
}

func TestParse_EndToEndFromVersionTwo(t *testing.T) {
	p := &Parser{Base: testBase, Resolver: newTestResolver(t)}

	got, err := p.Parse(versionedCtx(2), strings.NewReader(`{"new_test_field":"value_one"}`), codec.MediaTypeJSON)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"new_test_field":             "value_one",
		"new_related_object_id_list": []int{1, 2, 3, 4, 5},
	}, got.Map())
}

func TestParse_YAMLBody(t *testing.T) {
	p := &Parser{Base: testBase, Resolver: newTestResolver(t)}

	got, err := p.Parse(versionedCtx(1), strings.NewReader("test_field_one: value_one\n"), "application/vnd.test.testtype+yaml")
	require.NoError(t, err)
	assert.Equal(t, "value_one", got.Map()["new_test_field"])
}

func TestParse_DecodeErrorPropagates(t *testing.T) {
	res := &mockResolver{}
	p := &Parser{Base: testBase, Resolver: res}

	_, err := p.Parse(versionedCtx(1), strings.NewReader(`{"broken"`), "")
	var syn *json.SyntaxError
	if !errors.As(err, &syn) {
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	}
	res.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)

	_, err = p.Parse(versionedCtx(1), strings.NewReader(testBody), "text/html")
	assert.ErrorIs(t, err, codec.ErrUnsupportedMediaType)
}

func TestParse_LookupFailurePropagates(t *testing.T) {
	p := &Parser{Base: "missing.Family", Resolver: transform.NewResolver(transform.NewDirectory())}

	_, err := p.Parse(versionedCtx(1), strings.NewReader(testBody), "")
	assert.ErrorIs(t, err, transform.ErrNamespaceNotFound)
}

type chainRecord struct {
	family string
	dir    transform.Direction
	steps  int
	err    error
}

type recordingObserver struct{ seen []chainRecord }

func (o *recordingObserver) ObserveChain(family string, dir transform.Direction, steps int, _ time.Duration, err error) {
	o.seen = append(o.seen, chainRecord{family, dir, steps, err})
}

func TestParse_ReportsToObserver(t *testing.T) {
	obs := &recordingObserver{}
	p := &Parser{Base: testBase, Resolver: newTestResolver(t), Observer: obs}

	_, err := p.Parse(versionedCtx(1), strings.NewReader(testBody), "")
	require.NoError(t, err)
	_, err = p.Parse(unversionedCtx(), strings.NewReader(testBody), "")
	require.NoError(t, err)

	require.Len(t, obs.seen, 1)
	assert.Equal(t, chainRecord{testBase, transform.Forwards, 2, nil}, obs.seen[0])
}
