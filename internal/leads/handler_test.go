package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/installer-man/internal/config"
	"github.com/wolfman30/installer-man/internal/notify"
	"github.com/wolfman30/installer-man/internal/observability/metrics"
	"github.com/wolfman30/installer-man/pkg/logging"
)

func newTestHandler(t *testing.T, delivery config.Delivery, sender notify.Sender) (*Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewLeadMetrics(reg)
	svc := NewService(delivery, sender, logging.Default(), WithMetrics(m))
	return NewHandler(svc, m, logging.Default()), reg
}

func post(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Submit(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func TestSubmit_Success(t *testing.T) {
	h, _ := newTestHandler(t, readyDelivery(), notify.NewStubSender(nil))

	w := post(h, `{"name":"Jane Doe","phone":"555-0100","email":"jane@example.com","details":"Hang a door"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	body := decodeBody(t, w)
	assert.Equal(t, true, body["ok"])
	id, _ := body["id"].(string)
	assert.NotEmpty(t, id)
}

func TestSubmit_ValidationListsEveryField(t *testing.T) {
	sender := &fakeSender{id: "msg-1"}
	h, _ := newTestHandler(t, readyDelivery(), sender)

	w := post(h, `{"email":"nope"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error  string  `json:"error"`
		Issues []Issue `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid input", body.Error)

	var fields []string
	for _, issue := range body.Issues {
		fields = append(fields, issue.Field())
	}
	assert.Equal(t, []string{"name", "phone", "email"}, fields)
	assert.Equal(t, 0, sender.Calls())
}

func TestSubmit_MissingSMTPPass(t *testing.T) {
	delivery := config.ResolveDelivery(func(key string) string {
		return map[string]string{
			"SMTP_HOST":          "smtp.example.com",
			"SMTP_USER":          "mailer@example.com",
			"CONTACT_TO_EMAIL":   "owner@example.com",
			"CONTACT_FROM_EMAIL": "site@example.com",
		}[key]
	})
	sender := &fakeSender{id: "msg-1"}
	h, reg := newTestHandler(t, delivery, sender)

	w := post(h, `{"name":"Jane Doe","phone":"555-0100","email":"jane@example.com"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body struct {
		Error   string          `json:"error"`
		Missing map[string]bool `json:"missing"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "SMTP not configured.", body.Error)
	assert.True(t, body.Missing["SMTP_PASS"])
	assert.False(t, body.Missing["SMTP_HOST"])
	assert.Equal(t, 0, sender.Calls())

	assert.Equal(t, float64(1), submissionCount(t, reg, metrics.OutcomeUnconfigured))
}

func submissionCount(t *testing.T, reg *prometheus.Registry, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "installer_contact_submissions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if m.GetLabel()[0].GetValue() == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestSubmit_ParseError(t *testing.T) {
	h, _ := newTestHandler(t, readyDelivery(), &fakeSender{})

	w := post(h, `{"name":`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Unexpected error", body["error"])
	assert.NotEmpty(t, body["details"])
}

func TestSubmit_BodyTooLarge(t *testing.T) {
	h, _ := newTestHandler(t, readyDelivery(), &fakeSender{})

	big := `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	w := post(h, big)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSubmit_DeliveryFailure(t *testing.T) {
	sender := &fakeSender{err: assert.AnError}
	h, _ := newTestHandler(t, readyDelivery(), sender)

	w := post(h, `{"name":"Jane Doe","phone":"555-0100","email":"jane@example.com"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Unexpected error", body["error"])
	assert.Equal(t, assert.AnError.Error(), body["details"])
	assert.Equal(t, 1, sender.Calls())
}

func TestSubmit_EscapesDetailsEndToEnd(t *testing.T) {
	sender := &fakeSender{id: "msg-1"}
	h, _ := newTestHandler(t, readyDelivery(), sender)

	w := post(h, `{"name":"Jane Doe","phone":"555-0100","email":"jane@example.com","details":"<script>alert(1)</script>\nbye"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, sender.last.HTML, "&lt;script&gt;alert(1)&lt;/script&gt;<br/>bye")
	assert.NotContains(t, sender.last.HTML, "<script>")
}

func TestSubmit_RequiredOnlyRendersThreeFields(t *testing.T) {
	sender := &fakeSender{id: "msg-1"}
	h, _ := newTestHandler(t, readyDelivery(), sender)

	w := post(h, `{"name":"Jane Doe","phone":"555-0100","email":"jane@example.com"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Name:", "Phone:", "Email:"}, strongLabels(t, sender.last.HTML))
}

func postForm(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.Submit(w, req)
	return w
}

func TestSubmit_FormEncoded(t *testing.T) {
	sender := &fakeSender{id: "msg-9"}
	h, _ := newTestHandler(t, readyDelivery(), sender)

	w := postForm(h, "name=Jane+Doe&phone=555-0100&email=jane%40example.com&zip=&serviceType=repairs&details=Two+doors")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "msg-9", decodeBody(t, w)["id"])
	require.Equal(t, 1, sender.Calls())
	assert.Equal(t, []string{"Name:", "Phone:", "Email:", "Service type:", "Details:"}, strongLabels(t, sender.last.HTML))
	assert.Equal(t, "jane@example.com", sender.last.ReplyTo)
}

func TestSubmit_FormEncodedValidation(t *testing.T) {
	sender := &fakeSender{id: "msg-9"}
	h, _ := newTestHandler(t, readyDelivery(), sender)

	w := postForm(h, "name=&phone=555-0100&email=nope")

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error  string  `json:"error"`
		Issues []Issue `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid input", body.Error)
	var fields []string
	for _, issue := range body.Issues {
		fields = append(fields, issue.Field())
	}
	assert.Equal(t, []string{"name", "email"}, fields)
	assert.Equal(t, 0, sender.Calls())
}

type failingSubmitter struct{}

func (failingSubmitter) Submit(context.Context, LeadRequest) (Receipt, error) {
	return Receipt{}, errors.New("boom")
}

func (failingSubmitter) Ready() bool { return true }

func TestSubmit_UnclassifiedErrorIsCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewLeadMetrics(reg)
	h := NewHandler(failingSubmitter{}, m, logging.Default())

	w := post(h, `{"name":"Jane Doe","phone":"555-0100","email":"jane@example.com"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Unexpected error", body["error"])
	assert.Equal(t, "boom", body["details"])
	assert.Equal(t, float64(1), submissionCount(t, reg, metrics.OutcomeError))
}
