package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/codehuddle/codehuddle/internal/adapters/http"
	signalws "github.com/codehuddle/codehuddle/internal/adapters/signal"
	"github.com/codehuddle/codehuddle/internal/app"
	"github.com/codehuddle/codehuddle/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	coord := app.NewCoordinator(cfg.PendingRequestTTL)
	ctrl := signalws.NewController(coord, cfg)

	r := router.SetupRouter(ctx, cfg, ctrl)

	ln, port, err := listenWithRetry(cfg.Port, cfg.MaxPortRetries)
	if err != nil {
		log.Fatal().Err(err).Msg("no port available")
	}

	srv := &http.Server{Handler: r}

	go ctrl.RunJanitor(ctx)

	go func() {
		log.Info().Int("port", port).Msg("codehuddle server started")
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

// listenWithRetry binds the configured port, advancing to the next one
// when it is already taken. Clients discover the final port out of band.
func listenWithRetry(port, retries int) (net.Listener, int, error) {
	for i := 0; i <= retries; i++ {
		addr := fmt.Sprintf(":%d", port+i)
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			return ln, port + i, nil
		}
		log.Warn().Str("addr", addr).Err(err).Msg("port unavailable, trying next")
	}
	return nil, 0, fmt.Errorf("no free port in range %d-%d", port, port+retries)
}
