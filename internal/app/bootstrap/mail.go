package bootstrap

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/installer-man/internal/config"
	"github.com/wolfman30/installer-man/internal/notify"
	"github.com/wolfman30/installer-man/pkg/logging"
)

// LoadAWSConfig centralizes AWS SDK initialization so the server and the
// Lambda share the same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	region := firstNonEmpty(cfg.Delivery.AWSRegion, cfg.AWSRegion)
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("bootstrap: load aws config: %w", err)
	}
	return awsCfg, nil
}

// NewSESClient builds an SES v2 client, pointed at AWS_ENDPOINT_OVERRIDE
// when set (LocalStack).
func NewSESClient(awsCfg aws.Config, endpointOverride string) *sesv2.Client {
	return sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		if endpoint := strings.TrimSpace(endpointOverride); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// BuildSender returns the mail transport selected by MAIL_TRANSPORT, or nil
// when the delivery settings are incomplete. A nil sender is not fatal: the
// contact endpoint reports the missing settings per request.
func BuildSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.Sender, error) {
	if logger == nil {
		logger = logging.Default()
	}
	d := cfg.Delivery
	if !d.Ready() {
		logger.Warn("mail delivery not configured", "transport", d.Transport, "missing", missingNames(d.Missing()))
		return nil, nil
	}

	switch d.Transport {
	case appconfig.TransportStub:
		logger.Info("using stub mail transport")
		return notify.NewStubSender(logger), nil
	case appconfig.TransportSendGrid:
		logger.Info("using sendgrid mail transport")
		return notify.NewSendGridSender(notify.SendGridConfig{APIKey: d.SendGridAPIKey}, logger), nil
	case appconfig.TransportSES:
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("using ses mail transport", "region", awsCfg.Region)
		return notify.NewSESSender(NewSESClient(awsCfg, cfg.AWSEndpointOverride), logger), nil
	default:
		logger.Info("using smtp mail transport", "addr", d.SMTPAddr(), "implicit_tls", d.SMTPSecure)
		return notify.NewSMTPSender(notify.SMTPConfig{
			Host:        d.SMTPHost,
			Port:        d.SMTPPort,
			Username:    d.SMTPUser,
			Password:    d.SMTPPass,
			ImplicitTLS: d.SMTPSecure,
		}, logger), nil
	}
}

func missingNames(missing map[string]bool) []string {
	var out []string
	for name, absent := range missing {
		if absent {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
