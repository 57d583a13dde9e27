package notify

import (
	"context"
	"fmt"
	"net"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"

	"github.com/wolfman30/installer-man/pkg/logging"
)

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// ImplicitTLS dials TLS directly (port 465). Otherwise STARTTLS is used
	// when the server offers it.
	ImplicitTLS bool
}

// Envelope is one SMTP submission: relay settings plus the built message.
type Envelope struct {
	Addr        string
	Host        string
	Port        int
	Username    string
	Password    string
	ImplicitTLS bool
	Msg         *gomail.Msg
}

// SMTPSender sends emails through an SMTP relay.
type SMTPSender struct {
	cfg    SMTPConfig
	logger *logging.Logger
	now    func() time.Time

	// deliver performs the SMTP conversation; replaced in tests.
	deliver func(ctx context.Context, env Envelope) error
}

// NewSMTPSender creates a sender for the given relay.
func NewSMTPSender(cfg SMTPConfig, logger *logging.Logger) *SMTPSender {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPSender{
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		deliver: deliverSMTP,
	}
}

// Send builds a multipart message and submits it. The id is the Message-ID
// header.
func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	if err := msg.validate(); err != nil {
		return "", err
	}

	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return "", fmt.Errorf("%w: from address: %v", ErrInvalidMessage, err)
	}
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return "", fmt.Errorf("%w: to address: %v", ErrInvalidMessage, err)
	}
	if msg.ToName != "" {
		to.Name = msg.ToName
	}

	idValue := uuid.NewString() + "@" + messageIDDomain(from.Address, s.cfg.Host)
	m, err := s.buildMessage(msg, from, to, idValue)
	if err != nil {
		return "", err
	}
	messageID := "<" + idValue + ">"

	env := Envelope{
		Addr:        net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port)),
		Host:        s.cfg.Host,
		Port:        s.cfg.Port,
		Username:    s.cfg.Username,
		Password:    s.cfg.Password,
		ImplicitTLS: s.cfg.ImplicitTLS,
		Msg:         m,
	}

	if err := s.deliver(ctx, env); err != nil {
		s.logger.Error("smtp send failed", "error", err, "to", to.Address, "addr", env.Addr)
		return "", fmt.Errorf("notify: smtp send failed: %w", err)
	}

	s.logger.Info("email sent via smtp", "to", to.Address, "subject", msg.Subject, "message_id", messageID)
	return messageID, nil
}

func (s *SMTPSender) buildMessage(msg EmailMessage, from, to *mail.Address, idValue string) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(from.String()); err != nil {
		return nil, fmt.Errorf("%w: from address: %v", ErrInvalidMessage, err)
	}
	if err := m.To(to.String()); err != nil {
		return nil, fmt.Errorf("%w: to address: %v", ErrInvalidMessage, err)
	}
	if addr := msg.replyTo(); addr != nil {
		if err := m.ReplyTo(addr.String()); err != nil {
			return nil, fmt.Errorf("%w: reply-to address: %v", ErrInvalidMessage, err)
		}
	} else if msg.ReplyTo != "" {
		s.logger.Warn("dropping unparseable reply-to address")
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(s.now())
	m.SetMessageIDWithValue(idValue)

	switch {
	case msg.Body != "" && msg.HTML != "":
		m.SetBodyString(gomail.TypeTextPlain, msg.Body)
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	default:
		m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	}
	return m, nil
}

func messageIDDomain(fromAddress, host string) string {
	if at := strings.LastIndex(fromAddress, "@"); at >= 0 && at < len(fromAddress)-1 {
		return fromAddress[at+1:]
	}
	return host
}

// deliverSMTP runs one SMTP session bounded by ctx.
func deliverSMTP(ctx context.Context, env Envelope) error {
	opts := []gomail.Option{gomail.WithPort(env.Port)}
	if env.ImplicitTLS {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if env.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(env.Username),
			gomail.WithPassword(env.Password),
		)
	}

	client, err := gomail.NewClient(env.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, env.Msg)
}

var _ Sender = (*SMTPSender)(nil)
