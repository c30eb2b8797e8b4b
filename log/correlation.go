package log

import (
	"github.com/ThreeDotsLabs/watermill/message"
)

const correlationIDMetadataKey = "correlation_id"

// CorrelationPublisherDecorator stamps outgoing messages with the correlation
// ID of the context they were published from.
type CorrelationPublisherDecorator struct {
	message.Publisher
}

func (d CorrelationPublisherDecorator) Publish(topic string, messages ...*message.Message) error {
	for i := range messages {
		if messages[i].Metadata.Get(correlationIDMetadataKey) != "" {
			continue
		}
		messages[i].Metadata.Set(correlationIDMetadataKey, CorrelationIDFromContext(messages[i].Context()))
	}

	return d.Publisher.Publish(topic, messages...)
}

// CorrelationIDFromMessage reads the correlation ID stamped by the publisher
// decorator.
func CorrelationIDFromMessage(msg *message.Message) string {
	return msg.Metadata.Get(correlationIDMetadataKey)
}
