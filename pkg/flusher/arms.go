package flusher

import (
	"github.com/loongcollector/agent/pkg/event"
	"github.com/loongcollector/agent/pkg/sender"
)

// ArmsSpanFlusher sends event.Groups of SpanEvents to an Arms (Alibaba
// Cloud Managed Service for OpenTelemetry) trace endpoint. The payload is
// Snappy-framed via the Base's Compressor, matching FlusherXTrace.cpp's
// wire format.
type ArmsSpanFlusher struct {
	Base
	Endpoint string
	AppID    string
}

func (f *ArmsSpanFlusher) QueueKey() string { return "arms/" + f.AppID }

func (f *ArmsSpanFlusher) Send(g *event.Group) error {
	payload, rawSize, err := f.SerializeAndCompress(g)
	if err != nil {
		return err
	}
	f.Queue.Push(&sender.Item{Group: g, Payload: payload, RawByteSize: rawSize})
	return nil
}
