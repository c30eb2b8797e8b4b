package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/gateway"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/log"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/service"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/tracing"
)

func main() {
	log.Init(logrus.InfoLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tp := tracing.ConfigureTraceProvider(os.Getenv("JAEGER_ENDPOINT"))
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logrus.WithError(err).Error("failed to shut down trace provider")
		}
	}()

	database, err := sqlx.Open("postgres", os.Getenv("POSTGRES_URL"))
	if err != nil {
		panic(fmt.Errorf("failed to connect to postgres: %w", err))
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: os.Getenv("REDIS_ADDR"),
	})
	defer redisClient.Close()

	credentialSecret := os.Getenv("CREDENTIAL_SECRET")
	if credentialSecret == "" {
		panic("CREDENTIAL_SECRET is required")
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	paymentService := gateway.NewPaymentClient(os.Getenv("PAYMENTS_ADDR"))
	notificationsService := gateway.NewNotificationsClient(os.Getenv("NOTIFICATIONS_ADDR"))

	err = service.New(
		addr,
		database,
		redisClient,
		credentialSecret,
		paymentService,
		notificationsService,
	).Run(ctx)
	if err != nil {
		panic(err)
	}
}
