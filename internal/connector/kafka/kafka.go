// Package kafka replays board action documents from a Kafka topic, as
// written by a webhook relay.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/crimson-sun/velocity/internal/connector"
	"github.com/crimson-sun/velocity/internal/model"
)

const defaultIdleTimeout = 10 * time.Second

func init() {
	connector.Register("kafka", func() connector.Connector {
		return &Connector{NewReader: newKafkaReader}
	})
}

// Reader exposes the minimal kafka.Reader interface needed by the connector.
type Reader interface {
	ReadMessage(context.Context) (kafka.Message, error)
	Close() error
}

// Connector reads one partition of a topic from its first offset until it
// catches up with the high-water mark. cfg.Endpoint holds comma-separated
// brokers; cfg.Extra carries "topic" and optionally "partition" and
// "idle_timeout".
type Connector struct {
	NewReader func(kafka.ReaderConfig) Reader
}

func newKafkaReader(cfg kafka.ReaderConfig) Reader {
	return kafka.NewReader(cfg)
}

// ReaderConfig builds the partition reader configuration from cfg.
func ReaderConfig(cfg connector.ConnectorConfig) (kafka.ReaderConfig, error) {
	topic := cfg.Extra["topic"]
	if topic == "" {
		return kafka.ReaderConfig{}, fmt.Errorf("kafka connector: missing required config key \"topic\" in Extra")
	}
	if cfg.Endpoint == "" {
		return kafka.ReaderConfig{}, fmt.Errorf("kafka connector: no brokers configured")
	}
	partition := 0
	if p := cfg.Extra["partition"]; p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return kafka.ReaderConfig{}, fmt.Errorf("kafka connector: partition %q: %w", p, err)
		}
		partition = n
	}
	return kafka.ReaderConfig{
		Brokers:     strings.Split(cfg.Endpoint, ","),
		Topic:       topic,
		Partition:   partition,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	}, nil
}

// Actions yields each message's action document. A message may carry the
// bare action or a webhook envelope {"action": {...}}. The sequence ends at
// the high-water mark, or when no message arrives within the idle timeout.
func (c *Connector) Actions(ctx context.Context, cfg connector.ConnectorConfig, _ connector.QueryParams) iter.Seq2[model.RawAction, error] {
	rc, err := ReaderConfig(cfg)
	if err != nil {
		return connector.Fail(err)
	}
	return func(yield func(model.RawAction, error) bool) {
		idle := defaultIdleTimeout
		if raw := cfg.Extra["idle_timeout"]; raw != "" {
			if d, err := time.ParseDuration(raw); err == nil && d > 0 {
				idle = d
			}
		}

		newReader := c.NewReader
		if newReader == nil {
			newReader = newKafkaReader
		}
		reader := newReader(rc)
		defer reader.Close()

		for {
			readCtx, cancel := context.WithTimeout(ctx, idle)
			msg, err := reader.ReadMessage(readCtx)
			cancel()
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
					return
				}
				yield(nil, fmt.Errorf("kafka connector: read %s/%d: %w", rc.Topic, rc.Partition, err))
				return
			}

			raw, err := decode(msg.Value)
			if err != nil {
				yield(nil, fmt.Errorf("kafka connector: offset %d: %w", msg.Offset, err))
				return
			}
			if !yield(raw, nil) {
				return
			}
			if msg.HighWaterMark > 0 && msg.Offset >= msg.HighWaterMark-1 {
				return
			}
		}
	}
}

func decode(value []byte) (model.RawAction, error) {
	var raw model.RawAction
	if err := json.Unmarshal(value, &raw); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	if inner, ok := raw["action"].(map[string]any); ok {
		return model.RawAction(inner), nil
	}
	return raw, nil
}
