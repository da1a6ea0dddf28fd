package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/clewlabs/memoria/internal/api"
	"github.com/clewlabs/memoria/internal/mcp"
	"github.com/clewlabs/memoria/internal/storage"
)

const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API and MCP stdio server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.Info("memoria starting",
		"version", version,
		"buildMode", storage.BuildMode,
		"driver", storage.DriverName,
		"db", a.cfg.DBPath,
	)

	rest := api.NewServer(api.Config{
		Addr:           a.cfg.HTTPAddr,
		CORSOrigins:    a.cfg.CORSOrigins,
		GitHubToken:    a.cfg.GitHub.Token,
		GitHubUsername: a.cfg.GitHub.Username,
	}, a.store, a.engine, a.capture, a.github, a.pattern, a.limiter, a.logger)

	mcpServer, err := mcp.NewServer(a.store, a.engine, a.capture, a.pattern, a.limiter, a.logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:    a.cfg.HTTPAddr,
		Handler: rest.Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("REST API listening", "addr", a.cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		a.logger.Info("MCP server ready, listening on stdio")
		return mcpServer.Serve(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info("server stopped")
	return nil
}
