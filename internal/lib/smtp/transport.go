package smtp

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/rbenzing/slimbooks-app/internal/config"
	"github.com/rbenzing/slimbooks-app/internal/lib/sl"
)

// Transport открывает аутентифицированные STARTTLS-соединения с почтовым
// сервером для воркера писем активации. Соединение живет на одно письмо:
// объем исходящей почты здесь мал, держать пул незачем.
type Transport struct {
	smtp config.SMTP
	log  *slog.Logger
}

// NewTransport создает транспорт по секции SMTP конфигурации.
func NewTransport(smtpCfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{smtp: smtpCfg, log: log}
}

// Connect подключается к серверу, поднимает TLS и проходит аутентификацию.
// Сервер без поддержки STARTTLS отвергается: учетные данные открытым
// текстом не передаются.
func (t *Transport) Connect() (Client, error) {
	const op = "smtp.Connect"

	conn, err := net.Dial("tcp", net.JoinHostPort(t.smtp.SMTPHost, t.smtp.SMTPPort))
	if err != nil {
		t.log.Error("failed to dial SMTP server", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.smtp.SMTPHost)
	if err != nil {
		t.log.Error("failed to create SMTP client", sl.Err(err))
		if closeErr := conn.Close(); closeErr != nil {
			t.log.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := t.secure(client); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			t.log.Error("failed to close client", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &smtpClientWrapper{client: client}, nil
}

// secure переводит сессию в TLS и аутентифицируется.
func (t *Transport) secure(client *smtp.Client) error {
	if ok, _ := client.Extension("STARTTLS"); !ok {
		t.log.Error("SMTP server does not support STARTTLS")
		return fmt.Errorf("smtp server does not support STARTTLS")
	}

	tlsConfig := &tls.Config{
		ServerName: t.smtp.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		t.log.Error("failed to start TLS", sl.Err(err))
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", t.smtp.SMTPUser, t.smtp.SMTPPass, t.smtp.SMTPHost)
	if err := client.Auth(auth); err != nil {
		t.log.Error("smtp auth failed", sl.Err(err))
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	return nil
}

// GetSMTPUser возвращает адрес, от имени которого уходят письма активации.
func (t *Transport) GetSMTPUser() string {
	return t.smtp.SMTPUser
}
