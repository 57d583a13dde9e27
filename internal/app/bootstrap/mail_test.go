package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/installer-man/internal/config"
	"github.com/wolfman30/installer-man/internal/notify"
)

func baseConfig(d appconfig.Delivery) *appconfig.Config {
	d.To = "owner@example.com"
	d.From = "site@example.com"
	return &appconfig.Config{
		AWSRegion:          "us-east-1",
		AWSAccessKeyID:     "test",
		AWSSecretAccessKey: "test",
		Delivery:           d,
	}
}

func TestBuildSender_SelectsTransport(t *testing.T) {
	tests := []struct {
		name     string
		delivery appconfig.Delivery
		check    func(t *testing.T, s notify.Sender)
	}{
		{
			name:     "stub",
			delivery: appconfig.Delivery{Transport: appconfig.TransportStub},
			check: func(t *testing.T, s notify.Sender) {
				assert.IsType(t, &notify.StubSender{}, s)
			},
		},
		{
			name:     "sendgrid",
			delivery: appconfig.Delivery{Transport: appconfig.TransportSendGrid, SendGridAPIKey: "SG.key"},
			check: func(t *testing.T, s notify.Sender) {
				assert.IsType(t, &notify.SendGridSender{}, s)
			},
		},
		{
			name:     "ses",
			delivery: appconfig.Delivery{Transport: appconfig.TransportSES, AWSRegion: "us-west-2"},
			check: func(t *testing.T, s notify.Sender) {
				assert.IsType(t, &notify.SESSender{}, s)
			},
		},
		{
			name: "smtp",
			delivery: appconfig.Delivery{
				Transport: appconfig.TransportSMTP,
				SMTPHost:  "smtp.example.com",
				SMTPPort:  465,
				SMTPUser:  "mailer",
				SMTPPass:  "secret",
			},
			check: func(t *testing.T, s notify.Sender) {
				assert.IsType(t, &notify.SMTPSender{}, s)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, err := BuildSender(context.Background(), baseConfig(tt.delivery), nil)
			require.NoError(t, err)
			require.NotNil(t, sender)
			tt.check(t, sender)
		})
	}
}

func TestBuildSender_Unconfigured(t *testing.T) {
	cfg := baseConfig(appconfig.Delivery{Transport: appconfig.TransportSMTP, SMTPHost: "smtp.example.com"})

	sender, err := BuildSender(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, sender)
}

func TestLoadAWSConfig_PrefersDeliveryRegion(t *testing.T) {
	cfg := baseConfig(appconfig.Delivery{Transport: appconfig.TransportSES, AWSRegion: "eu-west-1"})

	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", awsCfg.Region)

	client := NewSESClient(awsCfg, "http://localhost:4566")
	require.NotNil(t, client)
	assert.Equal(t, "http://localhost:4566", *client.Options().BaseEndpoint)
}

func TestMissingNamesSorted(t *testing.T) {
	got := missingNames(map[string]bool{"SMTP_PASS": true, "SMTP_HOST": true, "SMTP_PORT": false})
	assert.Equal(t, []string{"SMTP_HOST", "SMTP_PASS"}, got)
}
