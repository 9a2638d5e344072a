// Package slimbooks собирает веб-приложение админки: хранилище, миграции,
// сессии, брокер сообщений, сервисы и HTTP-сервер.
package slimbooks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/rbenzing/slimbooks-app/internal/config"
	"github.com/rbenzing/slimbooks-app/internal/lib/token"
	"github.com/rbenzing/slimbooks-app/internal/migrations"
	"github.com/rbenzing/slimbooks-app/internal/rabbitmq"
	authservice "github.com/rbenzing/slimbooks-app/internal/services/auth"
	userservice "github.com/rbenzing/slimbooks-app/internal/services/user"
	"github.com/rbenzing/slimbooks-app/internal/session"
	"github.com/rbenzing/slimbooks-app/internal/storage/repository"
	"github.com/rbenzing/slimbooks-app/internal/view"
)

type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	sessions *session.Store
	conn     *amqp.Connection
	ch       *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	sessions, err := session.InitStore(ctx, cfg.RedisConnection, cfg.CookieName, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetMailQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher := rabbitmq.NewActivationPublisher(ch)

	tokens := token.NewMaker(cfg.ActivationSecret, cfg.ActivationTTL)
	userService := userservice.New(db, publisher, tokens, logger, cfg.PageSize, cfg.SelectorLimit)
	authService := authservice.New(db, logger)

	renderer, err := view.NewTemplateRenderer("./web/templates")
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, userService, authService, sessions, renderer, cfg.DetailedErrors)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		sessions: sessions,
		conn:     conn,
		ch:       ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.ch.Close(); cerr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", cerr))
		}
		if cerr := a.conn.Close(); cerr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", cerr))
		}
		a.db.DB.Close()
		return err
	}
}
