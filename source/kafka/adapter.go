package kafka

import "context"

// Message is one versioned payload read from the broker.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte

	// Resource names the manifest resource the payload belongs to.
	Resource string
	// Version is the representation version of Value, if the producer
	// pinned one.
	Version    int
	HasVersion bool
	MediaType  string
}

// EmitFunc handles one message. A non-nil error stops the consumer; the
// message is not marked and will be redelivered.
type EmitFunc func(context.Context, *Message) error

type Adapter interface {
	Configure(Config) error
	Run(context.Context, EmitFunc) error
	Close() error
}
