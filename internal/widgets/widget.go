// Package widgets is the reference resource served by versiond. Its
// representation has gone through three versions:
//
//	v1  test_field_one .. test_field_five
//	v2  test_field_one renamed to new_test_field
//	v3  new_related_object_id_list added
package widgets

import (
	"versiond/internal/resource"
	"versiond/transform"
)

// Locator is the transform family of the widget representation.
const Locator = "widgets.WidgetTransform"

// Widget is stored in its latest (v3) shape.
type Widget struct {
	ID             string `json:"id"`
	TestFieldTwo   string `json:"test_field_two"`
	TestFieldThree string `json:"test_field_three"`
	TestFieldFour  string `json:"test_field_four"`
	TestFieldFive  string `json:"test_field_five"`
	NewTestField   string `json:"new_test_field"`
	// RelatedIDs lists the ids of related objects pointing at this widget.
	RelatedIDs []int `json:"new_related_object_id_list"`
}

func init() {
	transform.MustRegister(Locator, 2, func() transform.Transform { return renameFieldOne{} })
	transform.MustRegister(Locator, 3, func() transform.Transform { return relatedIDList{} })

	resource.RegisterKind("widgets", resource.Kind{
		NewStore: func() resource.Store { return NewStore() },
	})
}

// ResourceID returns the widget id.
func (w *Widget) ResourceID() string {
	if w == nil {
		return ""
	}
	return w.ID
}
