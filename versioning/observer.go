package versioning

import (
	"time"

	"versiond/transform"
)

// Observer is told about every chain a Parser or Serializer runs.
type Observer interface {
	ObserveChain(family string, dir transform.Direction, steps int, took time.Duration, err error)
}

func observe(o Observer, family string, dir transform.Direction, steps int, start time.Time, err error) {
	if o == nil {
		return
	}
	o.ObserveChain(family, dir, steps, time.Since(start), err)
}
