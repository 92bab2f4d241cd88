package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/smartkitchen/internal/alert"
	"github.com/dukerupert/smartkitchen/internal/backup"
	"github.com/dukerupert/smartkitchen/internal/config"
	"github.com/dukerupert/smartkitchen/internal/database"
	"github.com/dukerupert/smartkitchen/internal/events"
	"github.com/dukerupert/smartkitchen/internal/logging"
	"github.com/dukerupert/smartkitchen/internal/push"
	"github.com/dukerupert/smartkitchen/internal/server"
	"github.com/dukerupert/smartkitchen/internal/whatsapp"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "gen-vapid" {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate vapid keys: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", pub, priv)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	wa := whatsapp.NewClient(cfg.WhatsApp.PhoneNumberID, cfg.WhatsApp.AccessToken,
		whatsapp.WithBaseURL(cfg.WhatsApp.BaseURL),
		whatsapp.WithAPIVersion(cfg.WhatsApp.APIVersion),
	)
	if !wa.Configured() {
		logger.Warn("whatsapp credentials missing, low-stock alerts will fail to send")
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		p, err := events.Dial(ctx, cfg.RabbitMQURL, logger)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		publisher = p
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("close event publisher", "error", err)
		}
	}()

	srv := server.New(db, server.Options{
		Alert: alert.Config{
			DefaultPhone: cfg.Alert.DefaultPhone,
			Schedule:     cfg.Alert.Schedule,
		},
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  cfg.Backup.Endpoint,
				Bucket:    cfg.Backup.Bucket,
				Region:    cfg.Backup.Region,
				AccessKey: cfg.Backup.AccessKey,
				SecretKey: cfg.Backup.SecretKey,
			},
			Passphrase: cfg.Backup.Passphrase,
			Schedule:   cfg.Backup.Schedule,
		},
		VAPIDPublic:   cfg.Push.VAPIDPublicKey,
		VAPIDPrivate:  cfg.Push.VAPIDPrivateKey,
		Sender:        wa,
		Publisher:     publisher,
		SecureCookies: cfg.SecureCookies,
	}, logger)

	// Stopped in reverse after the HTTP server drains.
	if err := srv.BackupManager().Start(ctx); err != nil {
		return fmt.Errorf("start backups: %w", err)
	}
	defer srv.BackupManager().Stop()

	if err := srv.Scanner().Start(ctx); err != nil {
		return fmt.Errorf("start inventory scanner: %w", err)
	}
	defer srv.Scanner().Stop()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		// Streams end on signal instead of holding Shutdown open.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("smartkitchen starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		srv.RateLimiter().Run(gctx)
		return nil
	})

	// Background cleanup
	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					logger.Info("cleaned up expired sessions", "count", n)
				}
			case <-gctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return nil
	})

	return g.Wait()
}
