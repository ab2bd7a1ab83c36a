package memory

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/pubsub"
)

// PubSub is an in-process watermill gochannel bus. Good enough for the
// single-binary deployment: delivery is at-least-once within the
// process and publishing never blocks the request path beyond the
// channel handoff.
type PubSub struct {
	bus *gochannel.GoChannel
	log *logger.Logger
}

func NewPubSub(log *logger.Logger) *PubSub {
	bus := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            1024,
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NopLogger{},
	)
	return &PubSub{bus: bus, log: log}
}

func (p *PubSub) Publish(ctx context.Context, topic string, msg *message.Message) error {
	msg.SetContext(ctx)
	if err := p.bus.Publish(topic, msg); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to publish message").
			WithReportableDetails(map[string]interface{}{
				"topic":      topic,
				"message_id": msg.UUID,
			}).
			Mark(ierr.ErrInternal)
	}
	return nil
}

func (p *PubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch, err := p.bus.Subscribe(ctx, topic)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to subscribe to topic").
			WithReportableDetails(map[string]interface{}{
				"topic": topic,
			}).
			Mark(ierr.ErrInternal)
	}
	return ch, nil
}

func (p *PubSub) Close() error {
	return p.bus.Close()
}

var (
	_ pubsub.Publisher  = (*PubSub)(nil)
	_ pubsub.Subscriber = (*PubSub)(nil)
)
