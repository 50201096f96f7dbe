package versioning

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"versiond/transform"
)

const testBase = "tests.test_transforms.TestModelTransform"

// testModelTransform0002 renames test_field_one to new_test_field.
type testModelTransform0002 struct{}

func (testModelTransform0002) Forwards(p *transform.Payload, _ *transform.Request) (*transform.Payload, error) {
	if v, ok := p.Delete("test_field_one"); ok {
		p.Set("new_test_field", v)
	}
	return p, nil
}

func (testModelTransform0002) Backwards(p *transform.Payload, _ *transform.Request, _ any) (*transform.Payload, error) {
	v, _ := p.Delete("new_test_field")
	p.Set("test_field_one", v)
	return p, nil
}

// testModelTransform0003 adds the related object id list.
type testModelTransform0003 struct{}

func (testModelTransform0003) Forwards(p *transform.Payload, _ *transform.Request) (*transform.Payload, error) {
	p.Set("new_related_object_id_list", []int{1, 2, 3, 4, 5})
	return p, nil
}

func (testModelTransform0003) Backwards(p *transform.Payload, _ *transform.Request, _ any) (*transform.Payload, error) {
	p.Delete("new_related_object_id_list")
	return p, nil
}

func newTestResolver(t *testing.T) transform.Resolver {
	t.Helper()
	d := transform.NewDirectory()
	require.NoError(t, d.Register(testBase, 2, func() transform.Transform { return testModelTransform0002{} }))
	require.NoError(t, d.Register(testBase, 3, func() transform.Transform { return testModelTransform0003{} }))
	return transform.NewResolver(d)
}

type testModel struct {
	TestFieldOne   string `json:"test_field_one"`
	TestFieldTwo   string `json:"test_field_two"`
	TestFieldThree string `json:"test_field_three"`
	TestFieldFour  string `json:"test_field_four"`
	TestFieldFive  string `json:"test_field_five"`
}

type testModelV3 struct {
	TestFieldTwo           string `json:"test_field_two"`
	TestFieldThree         string `json:"test_field_three"`
	TestFieldFour          string `json:"test_field_four"`
	TestFieldFive          string `json:"test_field_five"`
	NewTestField           string `json:"new_test_field"`
	NewRelatedObjectIDList []int  `json:"new_related_object_id_list"`
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(locator string, base int, reverse bool) ([]transform.Step, error) {
	args := m.Called(locator, base, reverse)
	steps, _ := args.Get(0).([]transform.Step)
	return steps, args.Error(1)
}

// recorder is a transform that records what it was handed and returns a
// fresh payload tagged with its name.
type recorder struct {
	name    string
	gotData []*transform.Payload
	gotReq  []*transform.Request
	gotInst []any
}

func (r *recorder) step(index int) transform.Step {
	return transform.Step{Index: index, New: func() transform.Transform { return r }}
}

func (r *recorder) Forwards(p *transform.Payload, req *transform.Request) (*transform.Payload, error) {
	r.gotData = append(r.gotData, p)
	r.gotReq = append(r.gotReq, req)
	return transform.PayloadOf("from", r.name), nil
}

func (r *recorder) Backwards(p *transform.Payload, req *transform.Request, instance any) (*transform.Payload, error) {
	r.gotData = append(r.gotData, p)
	r.gotReq = append(r.gotReq, req)
	r.gotInst = append(r.gotInst, instance)
	return transform.PayloadOf("from", r.name), nil
}

func bytesReader(b []byte) *bytes.Reader { return bytes.NewReader(b) }
