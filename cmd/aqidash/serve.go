// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aqidash/aqidash/internal/auth"
	"github.com/aqidash/aqidash/internal/config"
	"github.com/aqidash/aqidash/internal/content"
	"github.com/aqidash/aqidash/internal/dataset"
	"github.com/aqidash/aqidash/internal/logging"
	"github.com/aqidash/aqidash/internal/observability"
	"github.com/aqidash/aqidash/internal/session"
	"github.com/aqidash/aqidash/internal/web"
	"github.com/aqidash/aqidash/pkg/errutil"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the AQIDash web server and, unless metrics-addr is empty, the
metrics and health server. Stops gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.SetDefault(logging.Options{
				Service: serviceName,
				Version: version,
				Format:  cfg.Log.Format,
				Level:   cfg.Log.Level,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := runServe(ctx, cfg, logger, nil); err != nil {
				errutil.LogErrorContext(ctx, logger, "server failed", err)
				return err
			}
			return nil
		},
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runServe serves until ctx is cancelled. When ready is non-nil it
// receives the bound web address once the listener is up.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger, ready chan<- string) error {
	users, closeStore, err := openUserRepository(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	hasher, err := auth.NewHasher(cfg.Auth.Hasher)
	if err != nil {
		return err
	}
	svc, err := auth.NewServiceWithLogger(users, hasher, logger)
	if err != nil {
		return err
	}
	machine, err := session.NewMachineWithLogger(svc, logger)
	if err != nil {
		return err
	}

	secret, err := sessionSecret(cfg.Session.Secret, logger)
	if err != nil {
		return err
	}
	codec, err := session.NewCodec(secret, cfg.Session.TTL)
	if err != nil {
		return err
	}

	desc, err := content.Load(cfg.Content.Path)
	if err != nil {
		return err
	}

	var metrics *observability.Metrics
	if cfg.Server.MetricsAddr != "" {
		obs := observability.NewServerWithLogger(cfg.Server.MetricsAddr, svc.Ping, logger)
		obsErrs, err := obs.Start()
		if err != nil {
			return oops.With("operation", "start observability server").Wrap(err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := obs.Stop(stopCtx); err != nil {
				errutil.LogError(logger, "observability server shutdown", err)
			}
		}()
		go func() {
			for err := range obsErrs {
				errutil.LogError(logger, "observability server error", err)
			}
		}()
		metrics = obs.Metrics()
		logger.InfoContext(ctx, "observability server started", "addr", obs.Addr())
	}

	front, err := web.New(web.Config{
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.Secure,
		EmbedURL:   cfg.Dashboard.EmbedURL,
		EmbedTitle: cfg.Dashboard.EmbedTitle,
	}, web.Deps{
		Machine: machine,
		Codec:   codec,
		Content: desc,
		Dataset: dataset.NewSource(cfg.Dashboard.DatasetPath),
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return oops.Code("LISTEN_FAILED").With("addr", cfg.Server.Addr).Wrap(err)
	}

	httpServer := &http.Server{
		Handler:           front.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	logger.InfoContext(ctx, "web server started",
		"addr", listener.Addr().String(),
		"store", cfg.Store.Driver,
		"hasher", cfg.Auth.Hasher)
	if ready != nil {
		ready <- listener.Addr().String()
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return oops.Code("SERVE_FAILED").Wrap(err)
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return oops.Code("SERVE_FAILED").Wrap(err)
	}
	return nil
}

// sessionSecret returns the configured secret, or a random one valid for
// this process only.
func sessionSecret(configured string, logger *slog.Logger) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	secret := make([]byte, session.MinSecretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, oops.Code("SESSION_SECRET_FAILED").Wrap(err)
	}
	logger.Warn("session.secret is not set; sessions will not survive a restart")
	return secret, nil
}
