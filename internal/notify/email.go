package notify

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/installer-man/pkg/logging"
)

// Sender delivers one email and returns the transport's message id.
// Implementations can be swapped (SMTP, SES, SendGrid) without changing callers.
type Sender interface {
	Send(ctx context.Context, msg EmailMessage) (string, error)
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	From    string // RFC 5322 address, display name allowed
	To      string
	ToName  string
	ReplyTo string
	Subject string
	Body    string // Plain text body
	HTML    string // Optional HTML body
}

// ErrInvalidMessage is returned before any network call when a message
// cannot be addressed.
var ErrInvalidMessage = errors.New("notify: invalid message")

func (m EmailMessage) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("%w: recipient required", ErrInvalidMessage)
	}
	if strings.TrimSpace(m.From) == "" {
		return fmt.Errorf("%w: sender required", ErrInvalidMessage)
	}
	if m.Body == "" && m.HTML == "" {
		return fmt.Errorf("%w: body required", ErrInvalidMessage)
	}
	return nil
}

// replyTo parses ReplyTo into a single mailbox. It returns nil when the
// field is empty or not a valid address, so raw user input never reaches a
// header.
func (m EmailMessage) replyTo() *mail.Address {
	if strings.TrimSpace(m.ReplyTo) == "" {
		return nil
	}
	addr, err := mail.ParseAddress(m.ReplyTo)
	if err != nil {
		return nil
	}
	return addr
}

// SendGridSender sends emails via SendGrid API.
type SendGridSender struct {
	client *sendgrid.Client
	logger *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey string
}

// NewSendGridSender creates a new SendGrid email sender.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{
		client: sendgrid.NewSendClient(cfg.APIKey),
		logger: logger,
	}
}

// Send sends an email via SendGrid. The id is SendGrid's X-Message-Id.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("notify: sendgrid client not configured")
	}
	if err := msg.validate(); err != nil {
		return "", err
	}

	fromAddr, err := mail.ParseAddress(msg.From)
	if err != nil {
		return "", fmt.Errorf("%w: from address: %v", ErrInvalidMessage, err)
	}
	from := sgmail.NewEmail(fromAddr.Name, fromAddr.Address)
	to := sgmail.NewEmail(msg.ToName, msg.To)

	html := msg.HTML
	if html == "" {
		html = msg.Body
	}
	message := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Body, html)
	if addr := msg.replyTo(); addr != nil {
		message.SetReplyTo(sgmail.NewEmail(addr.Name, addr.Address))
	}

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To)
		return "", fmt.Errorf("notify: sendgrid send failed: %w", err)
	}

	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", msg.To)
		return "", fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	id := headerValue(response.Headers, "X-Message-Id")
	s.logger.Info("email sent via sendgrid", "to", msg.To, "subject", msg.Subject, "status", response.StatusCode, "message_id", id)
	return id, nil
}

func headerValue(headers map[string][]string, key string) string {
	for k, values := range headers {
		if strings.EqualFold(k, key) && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// StubSender logs instead of sending. Used in development.
type StubSender struct {
	logger *logging.Logger
}

// NewStubSender creates a stub email sender that logs but doesn't send.
func NewStubSender(logger *logging.Logger) *StubSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubSender{logger: logger}
}

// Send logs the email and returns a synthetic id.
func (s *StubSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	if err := msg.validate(); err != nil {
		return "", err
	}
	id := "stub-" + uuid.NewString()
	s.logger.Info("stub email sender: would send email", "to", msg.To, "reply_to", msg.ReplyTo, "subject", msg.Subject, "message_id", id)
	return id, nil
}

var (
	_ Sender = (*SendGridSender)(nil)
	_ Sender = (*StubSender)(nil)
)
