package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"versiond/internal/engine"
	"versiond/internal/resource"
)

// ResourceOptions selects one resource of a manifest.
type ResourceOptions struct {
	Manifest string
	Resource string
}

func (o *ResourceOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Manifest, "manifest", "m", o.Manifest, "Resources manifest.")
	fs.StringVarP(&o.Resource, "resource", "r", o.Resource, "Resource name from the manifest.")
}

func (o *ResourceOptions) Validate() error {
	if o.Resource == "" {
		return fmt.Errorf("--resource is required")
	}
	return nil
}

func (o *ResourceOptions) load() (*resource.Resource, error) {
	set, runner, err := engine.Resources(o.Manifest, nil, nil)
	if err != nil {
		return nil, err
	}
	_ = runner.Close()
	res, ok := set.Get(o.Resource)
	if !ok {
		return nil, fmt.Errorf("resource %q not in %s", o.Resource, o.Manifest)
	}
	return res, nil
}
