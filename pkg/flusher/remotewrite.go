package flusher

import (
	"github.com/loongcollector/agent/pkg/event"
	"github.com/loongcollector/agent/pkg/sender"
)

// RemoteWriteFlusher sends event.Groups of metrics to a Prometheus
// remote_write endpoint.
type RemoteWriteFlusher struct {
	Base
	URL string
}

func (f *RemoteWriteFlusher) QueueKey() string { return "remotewrite/" + f.URL }

func (f *RemoteWriteFlusher) Send(g *event.Group) error {
	payload, rawSize, err := f.SerializeAndCompress(g)
	if err != nil {
		return err
	}
	f.Queue.Push(&sender.Item{Group: g, Payload: payload, RawByteSize: rawSize})
	return nil
}

// PushGatewayFlusher sends event.Groups of metrics to a Pushgateway-style
// endpoint, one HTTP POST per group rather than the batched remote_write
// protocol.
type PushGatewayFlusher struct {
	Base
	URL string
	Job string
}

func (f *PushGatewayFlusher) QueueKey() string { return "pushgateway/" + f.Job }

func (f *PushGatewayFlusher) Send(g *event.Group) error {
	payload, rawSize, err := f.SerializeAndCompress(g)
	if err != nil {
		return err
	}
	f.Queue.Push(&sender.Item{Group: g, Payload: payload, RawByteSize: rawSize})
	return nil
}
