package leads

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/installer-man/internal/config"
	"github.com/wolfman30/installer-man/internal/notify"
	"github.com/wolfman30/installer-man/internal/observability/metrics"
	"github.com/wolfman30/installer-man/pkg/logging"
)

var dispatchTracer = otel.Tracer("installer.internal.leads")

// Submitter accepts a validated lead and hands it to the mail transport.
type Submitter interface {
	Submit(ctx context.Context, lead LeadRequest) (Receipt, error)
	Ready() bool
}

// Service renders lead notifications and dispatches them exactly once.
type Service struct {
	delivery config.Delivery
	sender   notify.Sender
	logger   *logging.Logger
	metrics  *metrics.LeadMetrics
	timeout  time.Duration
	now      func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithMetrics records dispatch latency on m.
func WithMetrics(m *metrics.LeadMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithDispatchTimeout bounds each transport call. Zero means no bound
// beyond what the transport applies itself.
func WithDispatchTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewService creates a Service. sender may be nil when the delivery
// configuration is incomplete; Submit then reports the configuration error.
func NewService(delivery config.Delivery, sender notify.Sender, logger *logging.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		delivery: delivery,
		sender:   sender,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready reports whether the delivery configuration is complete.
func (s *Service) Ready() bool {
	return s.delivery.Ready() && s.sender != nil
}

// Submit checks the configuration, renders the lead and sends it. It never
// retries: a transport failure is returned as *DeliveryError.
func (s *Service) Submit(ctx context.Context, lead LeadRequest) (Receipt, error) {
	if !s.delivery.Ready() {
		return Receipt{}, &ConfigurationError{Missing: s.delivery.Missing()}
	}
	if s.sender == nil {
		return Receipt{}, &DeliveryError{Err: ErrNoTransport}
	}

	msg := Render(lead)
	email := notify.EmailMessage{
		From:    s.delivery.From,
		To:      s.delivery.To,
		ReplyTo: lead.Email,
		Subject: msg.Subject,
		Body:    msg.Text,
		HTML:    msg.HTML,
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx, span := dispatchTracer.Start(ctx, "contact.dispatch", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("mail.transport", s.delivery.Transport),
		attribute.Bool("lead.has_details", lead.Details != nil),
	)

	started := s.now()
	id, err := s.sender.Send(ctx, email)
	s.metrics.ObserveDispatch(s.delivery.Transport, err == nil, s.now().Sub(started).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
		return Receipt{}, &DeliveryError{Err: err}
	}

	// SendGrid omits the id header on some plans; callers still get a
	// correlation id.
	if id == "" {
		id = uuid.NewString()
		s.logger.Warn("transport returned no message id", "transport", s.delivery.Transport, "generated_id", id)
	}
	span.SetAttributes(attribute.String("mail.message_id", id))

	s.logger.Info("lead notification sent",
		"id", id,
		"transport", s.delivery.Transport,
		"service_type", lead.Value(fieldServiceType),
	)
	return Receipt{ID: id}, nil
}
