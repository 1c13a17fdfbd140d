package events

import (
	"context"
	"sync"
)

type CapturedEvent struct {
	EventType    string
	Payload      []byte
	PartitionKey string
}

// MemoryPublisher records everything it is handed. Test fixture.
type MemoryPublisher struct {
	mu       sync.Mutex
	captured []CapturedEvent
	failWith error
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, eventType string, payload []byte, partitionKey string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	p.captured = append(p.captured, CapturedEvent{
		EventType:    eventType,
		Payload:      append([]byte(nil), payload...),
		PartitionKey: partitionKey,
	})
	return nil
}

func (p *MemoryPublisher) Captured() []CapturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]CapturedEvent, len(p.captured))
	copy(out, p.captured)
	return out
}

func (p *MemoryPublisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failWith = err
}
