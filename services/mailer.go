// file: services/mailer.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alpnix/HackAtDavidson/config"
	gomail "github.com/wneessen/go-mail"
)

type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// NewMailer returns an SMTP mailer when SMTP_HOST is configured, otherwise a mailer that only logs.
func NewMailer(cfg *config.Config) (Mailer, error) {
	if cfg.SMTPHost == "" {
		return LogMailer{}, nil
	}
	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil || port <= 0 {
		return nil, fmt.Errorf("invalid SMTP_PORT %q", cfg.SMTPPort)
	}
	return &SMTPMailer{
		Host: cfg.SMTPHost,
		Port: port,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPassword,
		From: cfg.MailFrom,
	}, nil
}

type SMTPMailer struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func (m *SMTPMailer) Send(ctx context.Context, mail Mail) error {
	msg, err := m.message(mail, time.Now())
	if err != nil {
		return err
	}
	client, err := gomail.NewClient(m.Host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", mail.To, err)
	}
	return nil
}

func (m *SMTPMailer) clientOptions() []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(m.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if m.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.User),
			gomail.WithPassword(m.Pass),
		)
	}
	return opts
}

// message builds a UTF-8 plain text message. go-mail encodes non-ASCII headers.
func (m *SMTPMailer) message(mail Mail, now time.Time) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("mail from %q: %w", m.From, err)
	}
	if err := msg.To(mail.To); err != nil {
		return nil, fmt.Errorf("mail to %q: %w", mail.To, err)
	}
	msg.Subject(strings.NewReplacer("\r", " ", "\n", " ").Replace(mail.Subject))
	msg.SetDateWithValue(now)
	msg.SetMessageID()
	msg.SetBodyString(gomail.TypeTextPlain, mail.Body)
	return msg, nil
}

// LogMailer records that mail would have been sent. Bodies carry OTP codes, so
// only the envelope is logged.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, m Mail) error {
	slog.Info("mail (not sent, SMTP disabled)", "to", m.To, "subject", m.Subject)
	return nil
}

// SendAsync delivers m in the background and logs failures. The send is bounded by timeout.
func SendAsync(mailer Mailer, m Mail, timeout time.Duration) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := mailer.Send(ctx, m); err != nil {
			slog.Warn("mail delivery failed", "to", m.To, "subject", m.Subject, "error", err)
		}
	}()
}
