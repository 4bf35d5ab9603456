package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/suchimauz/doctor-appointment-booking/internal/adapters/out/calendly"
	"github.com/suchimauz/doctor-appointment-booking/internal/adapters/out/rabbitmq"
	"github.com/suchimauz/doctor-appointment-booking/internal/adapters/out/store"
	"github.com/suchimauz/doctor-appointment-booking/internal/config"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/services/appointment_type_service"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/services/booking_service"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/services/schedule_service"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/services/slot_service"
)

// application holds the wired services and the resources to release on exit.
type application struct {
	cfg      *config.Config
	logger   out.LoggerPort
	types    *appointment_type_service.AppointmentTypeService
	schedule *schedule_service.ScheduleService
	slots    *slot_service.SlotService
	bookings *booking_service.BookingService
	closers  []func() error
}

func newApplication(ctx context.Context, cfg *config.Config, logger out.LoggerPort, withPublisher bool) (*application, error) {
	app := &application{cfg: cfg, logger: logger}

	// Registered first so buffered log records are flushed after every other closer.
	if syncer, ok := logger.(interface{ Sync() error }); ok {
		app.closers = append(app.closers, syncer.Sync)
	}

	calendarAdapter := calendly.NewCalendlyAdapter(cfg, logger)

	bookingStore, err := app.newBookingStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.schedule, err = schedule_service.NewScheduleService(
		calendarAdapter,
		bookingStore,
		domain.DefaultWorkingHours(),
		cfg.App.Location,
		logger,
	)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.types, err = appointment_type_service.NewAppointmentTypeService(domain.DefaultAppointmentTypes())
	if err != nil {
		app.Close()
		return nil, err
	}

	app.slots, err = slot_service.NewSlotService(app.schedule, app.types, cfg.Slots.IntervalMinutes, cfg.Slots.Workers, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	var publisher out.EventPublisherPort
	if withPublisher && cfg.RabbitMQ.Enabled {
		eventPublisher, err := rabbitmq.NewEventPublisher(cfg, logger)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		publisher = eventPublisher
		app.closers = append(app.closers, eventPublisher.Close)
	}

	app.bookings = booking_service.NewBookingService(
		app.types,
		app.slots,
		app.schedule,
		calendarAdapter,
		bookingStore,
		publisher,
		logger,
	)

	return app, nil
}

func (a *application) newBookingStore(ctx context.Context) (out.BookingStorePort, error) {
	switch a.cfg.Store.Driver {
	case config.StoreDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", a.cfg.Redis.Addr, err)
		}
		a.closers = append(a.closers, client.Close)

		a.logger.Info("app.store.redis", out.LogFields{
			"addr": a.cfg.Redis.Addr,
			"db":   a.cfg.Redis.DB,
		})
		return store.NewRedisStore(client, a.cfg.Slots.IntervalMinutes, a.logger)
	default:
		return store.NewMemoryStore(a.cfg.Store.HistorySize, a.logger)
	}
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("app.close_failed", out.LogFields{
				"error": err.Error(),
			})
		}
	}
	a.closers = nil
}
