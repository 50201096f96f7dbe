package kafka

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/IBM/sarama"

	"versiond/internal/logging"
	"versiond/sink"
)

const (
	HeaderResource    = "resource"
	HeaderAPIVersion  = "api-version"
	HeaderContentType = "content-type"
	HeaderAction      = "action"
)

type Config struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Acks    int16    `yaml:"required_acks"` // 0,1,-1
}

type driver struct {
	cfg  Config
	p    sarama.AsyncProducer
	done chan struct{}
	once sync.Once
}

func (d *driver) Configure(c any) error {
	cfg, ok := c.(Config)
	if !ok {
		return fmt.Errorf("kafka-sink: want Config, got %T", c)
	}
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return errors.New("kafka-sink: brokers and topic are required")
	}
	d.cfg = cfg

	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Acks)
	sc.Producer.Return.Errors = true
	var err error
	if d.p, err = sarama.NewAsyncProducer(cfg.Brokers, sc); err != nil {
		return err
	}
	d.done = make(chan struct{})
	go d.drainErrors()
	return nil
}

func (d *driver) drainErrors() {
	defer close(d.done)
	for perr := range d.p.Errors() {
		logging.L().Error("kafka-sink: produce failed", "topic", perr.Msg.Topic, "err", perr.Err)
	}
}

func (d *driver) Push(e *sink.Event) error {
	if d.p == nil {
		return errors.New("kafka-sink: not configured")
	}
	d.p.Input() <- toProducerMessage(d.cfg.Topic, e)
	return nil
}

func toProducerMessage(topic string, e *sink.Event) *sarama.ProducerMessage {
	key := e.Key
	if key == nil {
		key = []byte(e.ID)
	}
	return &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(e.Value),
		Headers: []sarama.RecordHeader{
			{Key: []byte(HeaderResource), Value: []byte(e.Resource)},
			{Key: []byte(HeaderAPIVersion), Value: []byte(strconv.Itoa(e.Version))},
			{Key: []byte(HeaderContentType), Value: []byte(e.MediaType)},
			{Key: []byte(HeaderAction), Value: []byte(e.Action)},
		},
	}
}

func (d *driver) Close() error {
	var err error
	d.once.Do(func() {
		if d.p == nil {
			return
		}
		err = d.p.Close()
		<-d.done
	})
	return err
}

func init() { sink.Register("kafka", func() sink.Adapter { return &driver{} }) }
