// Package flusher wires the batcher, serializer, compressor and sender
// queue together behind one interface per destination type, matching
// spec.md §6's external interfaces.
package flusher

import (
	"fmt"

	"github.com/loongcollector/agent/pkg/compression"
	"github.com/loongcollector/agent/pkg/event"
	"github.com/loongcollector/agent/pkg/sender"
)

// GroupSerializer serializes one event.Group into wire bytes.
type GroupSerializer interface {
	Serialize(g *event.Group) ([]byte, error)
}

// Flusher accepts flushed event.Groups from a Batcher and turns them into
// sender.Items on a sender.Queue.
type Flusher interface {
	// QueueKey identifies which sender.Queue this flusher's items belong
	// to, used by concurrency limiter registries to share limiters
	// across flushers targeting the same destination.
	QueueKey() string
	// Send serializes and compresses g, then enqueues it.
	Send(g *event.Group) error
}

// Base implements the common serialize-compress-enqueue sequence every
// concrete flusher shares; concrete flushers embed it and add their own
// QueueKey and Item metadata (project/region/logstore, HTTP destination).
type Base struct {
	Serializer GroupSerializer
	Compressor compression.Compressor
	Queue      *sender.Queue
}

// SerializeAndCompress runs g through the configured serializer and
// compressor, returning the final payload and its raw (pre-compression)
// byte size for rate-limiter accounting.
func (b *Base) SerializeAndCompress(g *event.Group) (payload []byte, rawSize int64, err error) {
	raw, err := b.Serializer.Serialize(g)
	if err != nil {
		return nil, 0, fmt.Errorf("flusher: serialize: %w", err)
	}
	compressed, err := b.Compressor.Compress(raw)
	if err != nil {
		return nil, 0, fmt.Errorf("flusher: compress: %w", err)
	}
	return compressed, int64(len(raw)), nil
}
