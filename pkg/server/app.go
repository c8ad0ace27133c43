package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "StockSage/internal/domain/repository"
	"StockSage/internal/service/finnhub"
	"StockSage/pkg/config"
	xhttp "StockSage/pkg/http"
	applogger "StockSage/pkg/logger"
)

// App encapsulates the application lifecycle: HTTP server, the optional
// market-data stream, and the backing stores that need closing.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	handler   xhttp.Handler
	stream    *finnhub.Stream
	bars      domrepo.BarStore
	publisher domrepo.EventPublisher

	httpServer *xhttp.Server
}

// New creates an App. stream, bars and publisher may be nil when the
// corresponding backend is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	stream *finnhub.Stream,
	bars domrepo.BarStore,
	publisher domrepo.EventPublisher,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		handler:   handler,
		stream:    stream,
		bars:      bars,
		publisher: publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.cfg.Kafka.LogTopic != "" {
		if pub, ok := a.publisher.(applogger.Publisher); ok {
			a.log.AddCollector(&applogger.CollectionConfig{
				TimeInterval:   30 * time.Second,
				CountThreshold: 100,
				Topic:          a.cfg.Kafka.LogTopic,
				Publisher:      pub,
			})
			defer a.log.RemoveCollector()
		}
	}

	if a.bars != nil {
		if err := a.bars.Init(ctx); err != nil {
			return err
		}
		a.log.Info("bar store ready")
	}

	if a.stream != nil {
		go func() {
			if err := a.stream.Run(ctx); err != nil && ctx.Err() == nil {
				a.log.Error("stream stopped", applogger.Error(err))
			}
		}()
		a.log.Info("market stream started")
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.bars != nil {
		if err := a.bars.Close(); err != nil {
			a.log.Warn("bar store close error", applogger.Error(err))
		}
	}
	a.log.Info("shutdown complete")
	return nil
}
