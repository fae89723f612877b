package flusher

import (
	"fmt"

	"github.com/loongcollector/agent/pkg/event"
	"github.com/loongcollector/agent/pkg/sender"
	"github.com/loongcollector/agent/pkg/serializer"
)

// SLSFlusher sends event.Groups to an SLS (Alibaba Cloud Log Service)
// PutLogs endpoint.
type SLSFlusher struct {
	Base
	Endpoint string
	Project  string
	Logstore string
}

func (f *SLSFlusher) QueueKey() string {
	return fmt.Sprintf("sls/%s/%s", f.Project, f.Logstore)
}

func (f *SLSFlusher) Send(g *event.Group) error {
	payload, rawSize, err := f.SerializeAndCompress(g)
	if err != nil {
		return err
	}
	envelope := serializer.SLSGroupListSerializer{}.Serialize([]serializer.CompressedLogGroup{{Data: payload}})
	f.Queue.Push(&sender.Item{
		Group:       g,
		Payload:     envelope,
		Project:     f.Project,
		Logstore:    f.Logstore,
		RawByteSize: rawSize,
	})
	return nil
}
