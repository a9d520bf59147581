package smtp

import (
	"context"
	"fmt"
	"time"

	"github.com/nebula-forge-api/internal/config"
	"github.com/wneessen/go-mail"
)

// Message is a single outbound HTML email.
type Message struct {
	From     string // falls back to the configured default sender
	To       string
	ReplyTo  string
	Subject  string
	HTMLBody string
}

// Mailer sends emails.
type Mailer interface {
	SendEmail(ctx context.Context, m Message) error
}

type mailer struct {
	host     string
	port     int
	from     string
	username string
	password string
	timeout  time.Duration
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		timeout:  cfg.MailSendTimeout,
	}
}

// SendEmail makes exactly one delivery attempt. The call is bounded by the
// configured send timeout in addition to ctx.
func (m *mailer) SendEmail(ctx context.Context, msg Message) error {
	mm, err := m.build(msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(m.timeout),
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}
	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func (m *mailer) build(msg Message) (*mail.Msg, error) {
	from := msg.From
	if from == "" {
		from = m.from
	}
	mm := mail.NewMsg()
	if err := mm.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := mm.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	if msg.ReplyTo != "" {
		if err := mm.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to %q: %w", msg.ReplyTo, err)
		}
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	return mm, nil
}
