// Package manifest describes the resources file: which resources are
// served, which transform family each uses, and where change events go.
package manifest

type ResourceSpec struct {
	Name string `yaml:"name"`
	// Kind selects the store implementation ("widgets").
	Kind string `yaml:"kind"`
	// TransformBase is the family locator, e.g. "widgets.WidgetTransform".
	TransformBase string `yaml:"transform_base"`
	// MediaType is the vendor type advertised for the resource.
	MediaType string `yaml:"media_type"`
}

type SinkSpec struct {
	Name   string `yaml:"name"`
	Driver string `yaml:"driver"` // "stdout", "kafka"
	// Resources limits the sink to these resources; empty means all.
	Resources []string `yaml:"resources"`
	// Version pins the representation version events are downgraded to.
	// Unset means latest; 0 is a version like any other.
	Version   *int   `yaml:"version"`
	MediaType string `yaml:"media_type"`

	Stdout struct {
		PrintCounter bool `yaml:"print_counter"`
	} `yaml:"stdout"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int16    `yaml:"required_acks"` // 0,1,-1
	} `yaml:"kafka"`
}

type File struct {
	SchemaVersion string `yaml:"schema_version"`

	Resources []ResourceSpec `yaml:"resources"`

	// Source optionally ingests versioned payloads from a broker.
	Source struct {
		Kind   string `yaml:"kind"`
		Driver string `yaml:"driver"`
		Config string `yaml:"config"`
	} `yaml:"source"`

	// Ordered list of change-event sinks.
	Sinks []SinkSpec `yaml:"sinks"`
}

// Resource returns the resource named name.
func (f *File) Resource(name string) (ResourceSpec, bool) {
	for _, r := range f.Resources {
		if r.Name == name {
			return r, true
		}
	}
	return ResourceSpec{}, false
}
