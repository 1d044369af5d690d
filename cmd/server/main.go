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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/Boxcall/internal/adapters/http"
	"github.com/dkeye/Boxcall/internal/adapters/rtc"
	"github.com/dkeye/Boxcall/internal/app"
	"github.com/dkeye/Boxcall/internal/app/orch"
	"github.com/dkeye/Boxcall/internal/config"
	"github.com/dkeye/Boxcall/internal/metrics"
	"github.com/dkeye/Boxcall/internal/store"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "boxcall",
		Short:        "Signaling coordinator for operators and camera boxes",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.Flags())
		},
	}
	cmd.Flags().String("env", "dev", "config environment, reads config/config.<env>.yaml")
	cmd.Flags().Int("port", 8080, "HTTP listen port")
	return cmd
}

func run(ctx context.Context, flags *pflag.FlagSet) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Logger first so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load(flags)
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return err
	}
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	zerolog.SetGlobalLevel(cfg.Level())
	cfg.OnChange(func(next *config.Config) {
		zerolog.SetGlobalLevel(next.Level())
		log.Info().Str("module", "main").Str("level", next.Level().String()).Msg("log level reloaded")
	})

	if err := rtc.Validate(rtc.ICEConfig(cfg.ICEServers)); err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
		return err
	}
	if st != nil {
		defer func() {
			if err := st.Close(); err != nil {
				log.Warn().Err(err).Msg("store close")
			}
		}()
	}

	o := orch.New(app.PolicyFor(cfg.Backpressure), metrics.New(), cfg.AckTimeout)

	r := router.SetupRouter(ctx, cfg, o, st)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("Boxcall server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return err
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}
