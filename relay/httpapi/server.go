package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type ServerConfig struct {
	Addr              string        `envconfig:"ADDR" default:":5000"`
	ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" split_words:"true" default:"10s"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"15s"`
}

// Serve runs handler on cfg.Addr until ctx is cancelled, then drains
// in-flight requests for up to cfg.ShutdownTimeout.
func Serve(ctx context.Context, cfg ServerConfig, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("starting call relay server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down call relay server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
