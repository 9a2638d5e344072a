// Package sender собирает почтовый воркер: брокер сообщений, SMTP-транспорт
// и потребителя очереди писем активации.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/rbenzing/slimbooks-app/internal/config"
	"github.com/rbenzing/slimbooks-app/internal/lib/smtp"
	"github.com/rbenzing/slimbooks-app/internal/rabbitmq"
	senderservice "github.com/rbenzing/slimbooks-app/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetMailQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	newTransport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.NewSenderService(newTransport, cfg.AppBaseURL, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.Consume(ctx, a.ch, rabbitmq.ActivationQueue, a.logger, a.senderService.SendActivationEmail)
	if err != nil {
		a.logger.Error("failed to start activation queue consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("Sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
