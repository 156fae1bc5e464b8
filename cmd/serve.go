package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/hotel-ops/live"
	"github.com/yeremiapane/hotel-ops/metrics"
	"github.com/yeremiapane/hotel-ops/router"
	"github.com/yeremiapane/hotel-ops/services"
	"github.com/yeremiapane/hotel-ops/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.RunE = serveCmd.RunE
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.HTTP.GinMode)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	tokens := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL, cfg.Auth.JWTIssuer)
	m := metrics.New()

	hub := live.NewHub()
	hub.OnClientsChanged(m.SetLiveClients)

	audit := services.NewAuditWriter(store, hub, m, cfg.Audit.BufferSize)
	audit.Start()

	if len(cfg.Auth.ViewPINs) == 0 {
		utils.InfoLogger.Println("No VIEW_PINS configured, PIN access is disabled")
	}

	r := router.SetupRouter(router.Dependencies{
		Config:  cfg,
		Store:   store,
		Tokens:  tokens,
		Audit:   audit,
		Hub:     hub,
		Metrics: m,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.Printf("Server running on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			utils.ErrorLogger.Errorf("Server failed: %v", err)
			shutdown(context.Background(), nil, hub, audit, store)
			return err
		}
	case <-ctx.Done():
		utils.InfoLogger.Println("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return shutdown(shutdownCtx, srv, hub, audit, store)
}

type closer interface {
	Close(ctx context.Context) error
}

// shutdown stops accepting requests first, then disconnects live clients,
// drains pending audit entries and finally closes the store.
func shutdown(ctx context.Context, srv *http.Server, hub *live.Hub, audit *services.AuditWriter, store closer) error {
	var errs []error
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	hub.Close()
	if err := audit.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := store.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		utils.ErrorLogger.Errorf("Shutdown finished with errors: %v", err)
		return err
	}
	utils.InfoLogger.Println("Server stopped")
	return nil
}
