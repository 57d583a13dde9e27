package config

import (
	"strconv"
	"strings"
)

// Mail transports understood by the bootstrap package.
const (
	TransportSMTP     = "smtp"
	TransportSES      = "ses"
	TransportSendGrid = "sendgrid"
	TransportStub     = "stub"
)

const (
	defaultSMTPPort = 587
	defaultFromName = "Installer Man"
)

// Delivery is the immutable mail configuration the contact endpoint needs.
// A Delivery that is not Ready stays that way for the life of the process.
type Delivery struct {
	Transport string

	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SMTPSecure bool

	SendGridAPIKey string
	AWSRegion      string

	To   string
	From string
}

// ResolveDelivery builds a Delivery from lookup, usually os.Getenv.
func ResolveDelivery(lookup func(string) string) Delivery {
	get := func(key string) string {
		return strings.TrimSpace(lookup(key))
	}

	port := defaultSMTPPort
	if raw := get("SMTP_PORT"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			port = parsed
		}
	}

	secure := port == 465
	if raw := get("SMTP_SECURE"); raw != "" {
		secure = strings.EqualFold(raw, "true")
	}

	user := get("SMTP_USER")
	from := get("CONTACT_FROM_EMAIL")
	if from == "" && user != "" {
		from = defaultFromName + " <" + user + ">"
	}

	transport := strings.ToLower(get("MAIL_TRANSPORT"))
	switch transport {
	case TransportSES, TransportSendGrid, TransportStub:
	default:
		transport = TransportSMTP
	}

	return Delivery{
		Transport:      transport,
		SMTPHost:       get("SMTP_HOST"),
		SMTPPort:       port,
		SMTPUser:       user,
		SMTPPass:       lookup("SMTP_PASS"),
		SMTPSecure:     secure,
		SendGridAPIKey: get("SENDGRID_API_KEY"),
		AWSRegion:      get("AWS_REGION"),
		To:             firstNonEmpty(get("CONTACT_TO_EMAIL"), get("NEXT_PUBLIC_CONTACT_TO_EMAIL")),
		From:           from,
	}
}

// Missing reports, for every setting the selected transport requires,
// whether it is missing. SMTP_PORT is listed but never missing since it
// has a default.
func (d Delivery) Missing() map[string]bool {
	missing := map[string]bool{
		"CONTACT_TO_EMAIL":   d.To == "",
		"CONTACT_FROM_EMAIL": d.From == "",
	}
	switch d.Transport {
	case TransportSES:
		missing["AWS_REGION"] = d.AWSRegion == ""
	case TransportSendGrid:
		missing["SENDGRID_API_KEY"] = d.SendGridAPIKey == ""
	case TransportStub:
	default:
		missing["SMTP_HOST"] = d.SMTPHost == ""
		missing["SMTP_PORT"] = false
		missing["SMTP_USER"] = d.SMTPUser == ""
		missing["SMTP_PASS"] = d.SMTPPass == ""
	}
	return missing
}

// Ready reports whether every required setting is present.
func (d Delivery) Ready() bool {
	for _, absent := range d.Missing() {
		if absent {
			return false
		}
	}
	return true
}

// SMTPAddr returns host:port for dialing.
func (d Delivery) SMTPAddr() string {
	return d.SMTPHost + ":" + strconv.Itoa(d.SMTPPort)
}
