package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payja-lending/internal/app/handlers"
	"payja-lending/internal/app/router"
	"payja-lending/internal/pkg/cleanup"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"

	otelapi "go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// App encapsulates application resources and lifecycle.
type App struct {
	*Container
	HTTPServer *http.Server

	stopSweep context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	c, err := Build(ctx)
	if err != nil {
		return nil, err
	}
	return &App{Container: c}, nil
}

// Handler builds the gin engine serving the public API.
func (a *App) Handler() http.Handler {
	meter := otelapi.GetMeterProvider().Meter(a.Cfg.Service.Name)
	return router.SetupRouter(a.Cfg.Service.Name, meter, router.Handlers{
		Ussd:  handlers.NewUssdHandler(a.Engine),
		Loans: handlers.NewLoanHandler(a.Settlement, a.Gateway),
		Banks: handlers.NewBankHandler(a.BankSync),
	})
}

// Run starts the overdue sweep and the HTTP server, then blocks until SIGINT or SIGTERM.
func (a *App) Run(ctx context.Context) error {
	if a.Cfg.OverdueSweep.Enabled {
		sweepCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		a.stopSweep = cancel
		go a.Sweep.Run(sweepCtx, a.Cfg.OverdueSweep.Interval())
	}

	a.HTTPServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Cfg.Server.Port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.CtxInfo(ctx, log_messages.ServerStarted, zap.String("addr", a.HTTPServer.Addr))
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.CtxError(ctx, log_messages.ServerStartFailure, err)
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case <-quit:
	case runErr = <-serverErr:
	case <-ctx.Done():
	}

	a.Shutdown(ctx)
	logger.CtxInfo(ctx, log_messages.ServerExiting)
	return runErr
}

// Shutdown stops the sweep, drains the server and closes all resources with bounded timeouts.
func (a *App) Shutdown(ctx context.Context) {
	if a.stopSweep != nil {
		a.stopSweep()
	}
	r := a.resources()
	r.Server = a.HTTPServer
	cleanup.CleanupResources(context.WithoutCancel(ctx), r)
}
