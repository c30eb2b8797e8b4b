package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/checkin"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/credential"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/db"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/db/archive"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/db/attendance"
	checkinsDB "github.com/Deibyd07/Gestion-de-Eventos-sub005/db/checkins"
	inventoryDB "github.com/Deibyd07/Gestion-de-Eventos-sub005/db/inventory"
	ticketsDB "github.com/Deibyd07/Gestion-de-Eventos-sub005/db/tickets"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/http"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/inventory"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/log"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/pubsub"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/pubsub/bus"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/pubsub/command"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/pubsub/event"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/pubsub/outbox"
)

func init() {
	log.Init(logrus.InfoLevel)
}

type Service struct {
	db              *sqlx.DB
	watermillRouter *message.Router
	httpServer      *http.Server
	sweeper         *inventory.Sweeper
}

func New(
	addr string,
	database *sqlx.DB,
	redisClient *redis.Client,
	credentialSecret string,
	paymentService inventory.PaymentConfirmer,
	notificationsService event.NotificationsService,
) Service {
	inventoryRepo := inventoryDB.NewPostgresRepository(database)
	checkInsRepo := checkinsDB.NewPostgresRepository(database)
	ticketsRepo := ticketsDB.NewPostgresRepository(database)
	attendanceReadModel := attendance.NewPostgresReadModel(database)
	eventArchive := archive.NewPostgresRepository(database)

	keys, err := credential.NewDerivedKeyProvider(credentialSecret)
	if err != nil {
		panic(fmt.Errorf("failed to create credential key provider: %w", err))
	}
	issuer := credential.NewIssuer(keys)

	ledger := inventory.NewLedger(inventoryRepo, issuer, paymentService)
	sweeper := inventory.NewSweeper(inventoryRepo, 30*time.Second, inventory.WithTicketExpirer(ticketsRepo))

	stateMachine := checkin.NewStateMachine(checkInsRepo, issuer)
	reconciler := checkin.NewReconciler(checkInsRepo, issuer)

	watermillLogger := log.NewWatermill(log.FromContext(context.Background()))

	var redisPublisher message.Publisher
	redisPublisher = pubsub.NewRedisPublisher(redisClient, watermillLogger)
	redisPublisher = log.CorrelationPublisherDecorator{Publisher: redisPublisher}

	eventsHandler := event.NewHandler(notificationsService)

	commandBus, err := bus.NewCommandBus(redisPublisher)
	if err != nil {
		panic(fmt.Errorf("failed to create command bus: %w", err))
	}

	commandsHandler := command.NewHandler(checkInsRepo)

	postgresSubscriber := outbox.NewPostgresSubscriber(database.DB, watermillLogger)
	eventProcessorConfig := event.NewProcessorConfig(redisClient, watermillLogger)
	commandProcessorConfig := command.NewProcessorConfig(redisClient, watermillLogger)

	redisSubscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        redisClient,
		ConsumerGroup: "svc-eventos.events",
	}, watermillLogger)
	if err != nil {
		panic(fmt.Errorf("failed to create redis subscriber: %w", err))
	}

	watermillRouter, err := pubsub.NewWatermillRouter(
		postgresSubscriber,
		redisPublisher,
		redisSubscriber,
		eventProcessorConfig,
		eventsHandler,
		commandProcessorConfig,
		commandsHandler,
		eventArchive,
		watermillLogger,
	)
	if err != nil {
		panic(fmt.Errorf("failed to create watermill router: %w", err))
	}

	httpServer := http.NewServer(
		addr,
		commandBus,
		ledger,
		ticketsRepo,
		stateMachine,
		reconciler,
		attendanceReadModel,
	)

	return Service{
		database,
		watermillRouter,
		httpServer,
		sweeper,
	}
}

func (s Service) Run(ctx context.Context) error {
	if err := db.InitializeDatabaseSchema(s.db); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.watermillRouter.Run(ctx)
	})

	g.Go(func() error {
		return s.sweeper.Run(ctx)
	})

	g.Go(func() error {
		// the HTTP server must not report healthy before the router is ready
		<-s.watermillRouter.Running()

		err := s.httpServer.Run(ctx)
		if err != nil {
			return err
		}

		return nil
	})

	return g.Wait()
}
