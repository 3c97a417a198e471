package email

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"go.uber.org/zap"
)

// MailgunConfig holds the credentials and identity used by MailgunSender.
type MailgunConfig struct {
	Domain      string
	APIKey      string
	APIBase     string
	FromEmail   string
	FromName    string
	SendTimeout time.Duration
}

// IsConfigured returns true if both domain and key are present.
func (c MailgunConfig) IsConfigured() bool {
	return c.Domain != "" && c.APIKey != ""
}

type mailgunClient interface {
	NewMessage(from, subject, text string, to ...string) *mailgun.Message
	Send(ctx context.Context, m *mailgun.Message) (string, string, error)
}

// MailgunSender sends emails via the Mailgun API.
type MailgunSender struct {
	cfg    MailgunConfig
	log    *zap.Logger
	client mailgunClient
}

// NewMailgunSender creates a sender for the configured Mailgun domain.
func NewMailgunSender(cfg MailgunConfig, log *zap.Logger) (*MailgunSender, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.APIBase != "" {
		mg.SetAPIBase(cfg.APIBase)
	}

	return newMailgunSender(cfg, mg, log), nil
}

func newMailgunSender(cfg MailgunConfig, client mailgunClient, log *zap.Logger) *MailgunSender {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	return &MailgunSender{
		cfg:    cfg,
		log:    log.Named("email.mailgun"),
		client: client,
	}
}

// Send delivers msg and returns the Mailgun message id.
func (s *MailgunSender) Send(ctx context.Context, msg Message) (string, error) {
	from := msg.From
	if from == "" {
		from = FormatAddress(s.cfg.FromName, s.cfg.FromEmail)
	}

	message := s.client.NewMessage(from, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}
	if msg.ReplyTo != "" {
		message.SetReplyTo(msg.ReplyTo)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()

	start := time.Now()
	_, messageID, err := s.client.Send(sendCtx, message)
	if err != nil {
		s.log.Error("failed to send email",
			zap.String("to", msg.To),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return "", &SendError{To: msg.To, Err: err}
	}

	s.log.Info("email sent",
		zap.String("to", msg.To),
		zap.String("message_id", messageID),
		zap.Duration("duration", time.Since(start)))

	return messageID, nil
}

func (c MailgunConfig) validate() error {
	if c.Domain == "" {
		return fmt.Errorf("MAILGUN_DOMAIN is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("MAILGUN_API_KEY is required")
	}
	if c.FromEmail == "" {
		return fmt.Errorf("EMAIL_FROM_ADDRESS is required")
	}
	return nil
}
