// versiond/sink/stdout/driver.go
package stdout

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"versiond/sink"
)

/* ────────── public config ────────── */
type Config struct {
	PrintCounter bool      `yaml:"print_counter"` // prepend seq#
	Output       io.Writer `yaml:"-"`             // stdout when nil
}

/* ────────── driver ────────── */
type driver struct {
	cfg Config

	mu  sync.Mutex // serialises writes
	seq atomic.Uint64
}

/* ────────── sink.Adapter ────────── */
func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	if c.Output == nil {
		c.Output = os.Stdout
	}
	d.cfg = c
	return nil
}

func (d *driver) Push(e *sink.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cfg.PrintCounter {
		if _, err := fmt.Fprintf(d.cfg.Output, "[sink %06d] ", d.seq.Add(1)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(d.cfg.Output, "%s/%s %s v%d %s %s\n",
		e.Resource, e.ID, e.Action, e.Version, e.MediaType, e.Value)
	return err
}

func (d *driver) Close() error { return nil }

/* ────────── auto-register ────────── */
func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
