package testutil

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
)

// InMemoryPublisher records published messages per topic so tests can
// assert on side-effect events without running consumers.
type InMemoryPublisher struct {
	mu       sync.Mutex
	messages map[string][]*message.Message
}

func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{
		messages: make(map[string][]*message.Message),
	}
}

func (p *InMemoryPublisher) Publish(_ context.Context, topic string, msg *message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages[topic] = append(p.messages[topic], msg)
	return nil
}

func (p *InMemoryPublisher) Close() error {
	return nil
}

// Messages returns everything published to a topic, in order
func (p *InMemoryPublisher) Messages(topic string) []*message.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*message.Message(nil), p.messages[topic]...)
}

func (p *InMemoryPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = make(map[string][]*message.Message)
}
