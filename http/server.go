package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/inventory"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/log"
)

type Ledger interface {
	CreateEvent(ctx context.Context, event entity.Event) (entity.Event, error)
	CreateTicketType(ctx context.Context, tt entity.TicketType) (entity.TicketType, error)
	GetTicketType(ctx context.Context, ticketTypeID string) (entity.TicketType, error)
	Reserve(ctx context.Context, in inventory.ReserveInput) (entity.Reservation, error)
	Commit(ctx context.Context, in inventory.CommitInput) ([]entity.Ticket, error)
	Release(ctx context.Context, reservationID string) error
}

type TicketsRepository interface {
	Get(ctx context.Context, ticketID string) (entity.Ticket, error)
	FindByEvent(ctx context.Context, eventID string) ([]entity.Ticket, error)
}

type CheckInStateMachine interface {
	CheckIn(ctx context.Context, token, scannerID, scannerEventID string, at time.Time) (entity.CheckInRecord, error)
	Reverse(ctx context.Context, ticketID string) error
}

type SyncReconciler interface {
	SyncBatch(ctx context.Context, batchKey, deviceID, scannerEventID string, entries []entity.OfflineEntry) ([]entity.SyncResult, error)
}

type AttendanceReadModel interface {
	Stats(ctx context.Context, eventID string) (entity.AttendanceStats, error)
}

type Server struct {
	addr        string
	e           *echo.Echo
	commandBus  *cqrs.CommandBus
	ledger      Ledger
	ticketsRepo TicketsRepository
	checkIns    CheckInStateMachine
	reconciler  SyncReconciler
	attendance  AttendanceReadModel
}

func NewServer(
	addr string,
	commandBus *cqrs.CommandBus,
	ledger Ledger,
	ticketsRepo TicketsRepository,
	checkIns CheckInStateMachine,
	reconciler SyncReconciler,
	attendance AttendanceReadModel,
) *Server {
	e := newEcho()

	server := &Server{
		addr:        addr,
		e:           e,
		commandBus:  commandBus,
		ledger:      ledger,
		ticketsRepo: ticketsRepo,
		checkIns:    checkIns,
		reconciler:  reconciler,
		attendance:  attendance,
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/events", server.PostEvents)
	e.POST("/events/:event_id/ticket-types", server.PostTicketTypes)
	e.GET("/events/:event_id/attendance", server.GetAttendance)
	e.GET("/events/:event_id/tickets", server.GetEventTickets)

	e.POST("/reservations", server.PostReservations)
	e.POST("/reservations/:reservation_id/commit", server.PostReservationCommit)
	e.DELETE("/reservations/:reservation_id", server.DeleteReservation)

	e.GET("/tickets/:ticket_id", server.GetTicket)
	e.GET("/tickets/:ticket_id/credential", server.GetTicketCredential)
	e.GET("/tickets/:ticket_id/credential.png", server.GetTicketCredentialPNG)
	e.POST("/tickets/:ticket_id/void", server.PostVoidTicket)

	e.POST("/check-ins", server.PostCheckIn)
	e.DELETE("/check-ins/:ticket_id", server.DeleteCheckIn)
	e.POST("/check-ins/sync", server.PostSyncBatch)

	return server
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(otelecho.Middleware("eventos"))
	e.Use(correlationMiddleware)

	return e
}

func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		correlationID := c.Request().Header.Get("Correlation-ID")
		if correlationID == "" {
			correlationID = shortuuid.New()
		}

		ctx := log.ContextWithCorrelationID(c.Request().Context(), correlationID)
		ctx = log.ToContext(ctx, logrus.WithField("correlation_id", correlationID))
		c.SetRequest(c.Request().WithContext(ctx))

		c.Response().Header().Set("Correlation-ID", correlationID)

		return next(c)
	}
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		err := s.e.Shutdown(ctx)
		if err != nil {
			log.FromContext(ctx).WithError(err).Error("failed to shutdown HTTP server")
		}
	}()
	log.FromContext(ctx).WithField("addr", s.addr).Info("[HTTP] server listening")
	if err := s.e.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
