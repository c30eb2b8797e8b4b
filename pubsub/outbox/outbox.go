package outbox

import (
	stdSQL "database/sql"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	watermillSQL "github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
)

const topic = "events_to_forward"

// NewPostgresSubscriber reads enveloped messages from the outbox table. The
// forwarder drains it into the broker.
func NewPostgresSubscriber(db *stdSQL.DB, logger watermill.LoggerAdapter) message.Subscriber {
	subscriber, err := watermillSQL.NewSubscriber(
		db,
		watermillSQL.SubscriberConfig{
			SchemaAdapter:    watermillSQL.DefaultPostgreSQLSchema{},
			OffsetsAdapter:   watermillSQL.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: true,
		},
		logger,
	)
	if err != nil {
		panic(fmt.Errorf("could not create outbox subscriber: %w", err))
	}

	return subscriber
}

// InitializeSchema creates the outbox tables. The forwarder's subscriber does
// this on startup as well; tests that publish without running the forwarder
// call it directly.
func InitializeSchema(db *stdSQL.DB) error {
	subscriber, err := watermillSQL.NewSubscriber(
		db,
		watermillSQL.SubscriberConfig{
			SchemaAdapter:    watermillSQL.DefaultPostgreSQLSchema{},
			OffsetsAdapter:   watermillSQL.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: true,
		},
		watermill.NopLogger{},
	)
	if err != nil {
		return fmt.Errorf("could not create outbox subscriber: %w", err)
	}

	return subscriber.SubscribeInitialize(topic)
}

// NewPublisherForDb returns a publisher that stores messages in the outbox
// table using the given transaction, so domain events commit or roll back
// together with the state change that caused them.
func NewPublisherForDb(db watermillSQL.ContextExecutor) (message.Publisher, error) {
	var publisher message.Publisher

	publisher, err := watermillSQL.NewPublisher(
		db,
		watermillSQL.PublisherConfig{
			SchemaAdapter: watermillSQL.DefaultPostgreSQLSchema{},
		},
		watermill.NopLogger{},
	)
	if err != nil {
		return nil, fmt.Errorf("could not create outbox publisher: %w", err)
	}

	publisher = forwarder.NewPublisher(publisher, forwarder.PublisherConfig{
		ForwarderTopic: topic,
	})

	return publisher, nil
}

// AddForwarderHandler attaches the outbox forwarder to the router, moving
// messages from postgres to the broker.
func AddForwarderHandler(
	postgresSubscriber message.Subscriber,
	publisher message.Publisher,
	router *message.Router,
	logger watermill.LoggerAdapter,
) {
	_, err := forwarder.NewForwarder(
		postgresSubscriber,
		publisher,
		logger,
		forwarder.Config{
			ForwarderTopic: topic,
			Router:         router,
		},
	)
	if err != nil {
		panic(fmt.Errorf("could not create forwarder: %w", err))
	}
}
