package flusher

import (
	"fmt"
	"os"
	"sync"

	"github.com/loongcollector/agent/pkg/event"
)

// LocalFileFlusher appends serialized, compressed groups to a local file,
// primarily for testing and debugging pipelines without a network
// destination: it bypasses the sender queue entirely since there is no
// transport to rate-limit.
type LocalFileFlusher struct {
	Base
	Path string

	mu   sync.Mutex
	file *os.File
}

func (f *LocalFileFlusher) QueueKey() string { return "localfile/" + f.Path }

func (f *LocalFileFlusher) Send(g *event.Group) error {
	payload, _, err := f.SerializeAndCompress(g)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		file, err := os.OpenFile(f.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("flusher: open local file: %w", err)
		}
		f.file = file
	}
	if _, err := f.file.Write(payload); err != nil {
		return fmt.Errorf("flusher: write local file: %w", err)
	}
	return nil
}

func (f *LocalFileFlusher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	return f.file.Close()
}
