package widgets

import (
	"versiond/transform"
)

// renameFieldOne is step 0002: test_field_one becomes new_test_field.
type renameFieldOne struct{}

func (renameFieldOne) Forwards(p *transform.Payload, _ *transform.Request) (*transform.Payload, error) {
	p.Rename("test_field_one", "new_test_field")
	return p, nil
}

func (renameFieldOne) Backwards(p *transform.Payload, _ *transform.Request, instance any) (*transform.Payload, error) {
	if p.Rename("new_test_field", "test_field_one") {
		return p, nil
	}
	// a sparse representation may have dropped the field; the entity has it
	switch w := instance.(type) {
	case *Widget:
		p.Set("test_field_one", w.NewTestField)
	case *transform.Payload:
		v, _ := w.Get("new_test_field")
		p.Set("test_field_one", v)
	default:
		p.Set("test_field_one", nil)
	}
	return p, nil
}

// relatedIDList is step 0003: the list of related object ids appears.
// Clients older than v3 cannot send relations, so upgraded payloads carry
// an empty list unless one is present already.
type relatedIDList struct{}

func (relatedIDList) Forwards(p *transform.Payload, _ *transform.Request) (*transform.Payload, error) {
	if !p.Has("new_related_object_id_list") {
		p.Set("new_related_object_id_list", []any{})
	}
	return p, nil
}

func (relatedIDList) Backwards(p *transform.Payload, _ *transform.Request, _ any) (*transform.Payload, error) {
	p.Delete("new_related_object_id_list")
	return p, nil
}
