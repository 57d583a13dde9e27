package leads

import (
	"fmt"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML replaces & < > " and ' with their entity equivalents.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Message is the rendered lead notification.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

var labels = map[string]string{
	fieldName:        "Name",
	fieldPhone:       "Phone",
	fieldEmail:       "Email",
	fieldZIP:         "ZIP",
	fieldServiceType: "Service type",
	fieldDate:        "Preferred date",
	fieldTimeWindow:  "Time window",
	fieldBudget:      "Approx. budget",
	fieldDetails:     "Details",
}

// Render builds the notification for a validated lead. Absent optional
// fields produce no line.
func Render(lead LeadRequest) Message {
	var html, text strings.Builder
	html.WriteString("<h2>New Contact Request</h2>\n")

	for _, field := range Fields() {
		value := lead.Value(field)
		if value == "" {
			continue
		}
		label := labels[field]
		escaped := EscapeHTML(value)
		if field == fieldDetails {
			escaped = "<br/>" + lineBreaks(escaped)
		}
		fmt.Fprintf(&html, "<p><strong>%s:</strong> %s</p>\n", label, escaped)
		fmt.Fprintf(&text, "%s: %s\n", label, value)
	}

	return Message{
		Subject: "you have received a new lead " + lead.Name,
		HTML:    html.String(),
		Text:    text.String(),
	}
}

func lineBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "<br/>")
}
