package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	httpadapter "github.com/suchimauz/doctor-appointment-booking/internal/adapters/in/http"
	"github.com/suchimauz/doctor-appointment-booking/internal/adapters/out/logger"
	"github.com/suchimauz/doctor-appointment-booking/internal/config"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/json_types"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:           "appointment-booking",
		Short:         "Doctor appointment booking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(slotsCmd())
	rootCmd.AddCommand(nextCmd())
	rootCmd.AddCommand(typesCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	rootLogger, err := logger.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := rootLogger.WithModule("Main")

	log.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"storeDriver":     cfg.Store.Driver,
		"rabbitmqEnabled": cfg.RabbitMQ.Enabled,
	})

	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, rootLogger, true)
	if err != nil {
		log.Error("app.init_failed", out.LogFields{
			"error": err.Error(),
		})
		return err
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, rootLogger,
		httpadapter.NewAppointmentTypeController(app.types, rootLogger),
		httpadapter.NewScheduleController(app.schedule, rootLogger),
		httpadapter.NewSlotController(app.slots, cfg.App.Location, rootLogger),
		httpadapter.NewBookingController(app.bookings, cfg.App.Location, rootLogger),
	)

	server := &http.Server{
		Addr:              cfg.HTTP.Host + ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Error("app.http.failed", out.LogFields{
			"error": err.Error(),
		})
		return err
	case <-ctx.Done():
	}

	log.Info("app.shutdown.initiated", out.LogFields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("app.shutdown.failed", out.LogFields{
			"error": err.Error(),
		})
		return err
	}

	log.Info("app.shutdown.completed", out.LogFields{})
	return nil
}

// newCLIApplication wires the services for one-shot commands. Logs are
// discarded and no booking events are published.
func newCLIApplication(ctx context.Context) (*application, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return newApplication(ctx, cfg, out.NopLogger(), false)
}

func slotsCmd() *cobra.Command {
	var (
		date            string
		appointmentType string
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List the free slots of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newCLIApplication(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			day, err := json_types.ParseDate(date, app.schedule.Location())
			if err != nil {
				return errors.New("invalid date format. Use YYYY-MM-DD")
			}

			result, err := app.slots.GetAvailableSlots(cmd.Context(), day, appointmentType)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s (%s), %s, %d min\n", result.Date, result.DayOfWeek, result.AppointmentTypeName, result.DurationMinutes)
			if !result.IsWorkingDay {
				fmt.Fprintln(w, result.Message)
				return nil
			}
			for _, slot := range result.Slots {
				fmt.Fprintf(w, "  %s - %s\n", slot.StartClock(), slot.EndClock())
			}
			fmt.Fprintf(w, "%d slots available\n", result.TotalSlots)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", time.Now().Format(json_types.DateLayout), "day to check, YYYY-MM-DD")
	cmd.Flags().StringVar(&appointmentType, "type", "general_consultation", "appointment type id")

	return cmd
}

func nextCmd() *cobra.Command {
	var appointmentType string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Find the next free slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newCLIApplication(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			next, err := app.slots.GetNextAvailableSlot(cmd.Context(), appointmentType, time.Time{})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !next.Found {
				fmt.Fprintln(w, next.Message)
				return nil
			}
			fmt.Fprintf(w, "%s %s - %s (%s, %d min)\n",
				next.Date, next.Slot.StartClock(), next.Slot.EndClock(), next.AppointmentTypeName, next.DurationMinutes)
			return nil
		},
	}

	cmd.Flags().StringVar(&appointmentType, "type", "general_consultation", "appointment type id")

	return cmd
}

func typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Print the appointment type catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newCLIApplication(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			fmt.Fprintln(cmd.OutOrStdout(), app.types.Table())
			return nil
		},
	}
}
