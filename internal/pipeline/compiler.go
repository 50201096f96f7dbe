package pipeline

import (
	"fmt"

	"versiond/codec"
	"versiond/internal/config"
	"versiond/internal/manifest"
	"versiond/internal/resource"
	"versiond/sink"
	sinkkafka "versiond/sink/kafka"
	"versiond/sink/stdout"
	"versiond/source/kafka"
)

// Compile builds a runner for the sinks and source declared in m.
// sourceConf is the resolved path of the source config file.
func Compile(m manifest.File, sourceConf string, set *resource.Set, codecs *codec.Registry) (*Runner, error) {
	if codecs == nil {
		codecs = codec.Default
	}
	r := NewRunner(set)

	for _, s := range m.Sinks {
		drv, err := sink.NewAdapter(s.Driver)
		if err != nil {
			return nil, fmt.Errorf("sink %s: %w", s.Name, err)
		}
		switch s.Driver {
		case "stdout":
			err = drv.Configure(stdout.Config{PrintCounter: s.Stdout.PrintCounter})
		case "kafka":
			err = drv.Configure(sinkkafka.Config{
				Brokers: s.Kafka.Brokers,
				Topic:   s.Kafka.Topic,
				Acks:    s.Kafka.RequiredAcks,
			})
		default:
			err = fmt.Errorf("no config block for sink driver %q", s.Driver)
		}
		if err != nil {
			return nil, fmt.Errorf("sink %s: %w", s.Name, err)
		}

		mt := s.MediaType
		if mt == "" {
			mt = codec.MediaTypeJSON
		}
		c, err := codecs.Lookup(mt)
		if err != nil {
			return nil, fmt.Errorf("sink %s: %w", s.Name, err)
		}
		r.AddSink(s.Name, drv, s.Resources, s.Version, c)
	}

	switch m.Source.Kind {
	case "":
	case "kafka":
		kc, err := config.LoadKafkaConfig(sourceConf)
		if err != nil {
			return nil, err
		}
		driver := m.Source.Driver
		if driver == "" {
			driver = "sarama"
		}
		src, err := kafka.NewAdapter(driver)
		if err != nil {
			return nil, err
		}
		if err := src.Configure(kc); err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		r.SetSource(src)
	default:
		return nil, fmt.Errorf("unsupported source %q", m.Source.Kind)
	}
	return r, nil
}
