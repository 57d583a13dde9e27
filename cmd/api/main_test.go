package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/installer-man/internal/config"
	"github.com/wolfman30/installer-man/pkg/logging"
)

func testConfig(delivery appconfig.Delivery) *appconfig.Config {
	return &appconfig.Config{
		Port:          "0",
		SiteURL:       "https://installer.example",
		ReadTimeout:   5 * time.Second,
		WriteTimeout:  5 * time.Second,
		OriginZIP:     "91304",
		GeocoderURL:   "http://127.0.0.1:0",
		GeocoderAgent: "test",
		GeocoderWait:  time.Second,
		AWSRegion:     "us-east-1",
		Delivery:      delivery,
	}
}

func TestNewServerAppliesTimeouts(t *testing.T) {
	cfg := testConfig(appconfig.Delivery{Transport: appconfig.TransportStub, To: "owner@example.com", From: "site@example.com"})
	srv, err := newServer(context.Background(), cfg, logging.New("error"))
	require.NoError(t, err)

	assert.Equal(t, ":0", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
	assert.Equal(t, 5*time.Second, srv.WriteTimeout)
}

func TestNewServerServesContactWithStubTransport(t *testing.T) {
	cfg := testConfig(appconfig.Delivery{Transport: appconfig.TransportStub, To: "owner@example.com", From: "site@example.com"})
	srv, err := newServer(context.Background(), cfg, logging.New("error"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":"Jane","phone":"555-0100","email":"jane@example.com"}`))
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, true, resp["ok"])
}

func TestNewServerReportsMissingSMTPSettings(t *testing.T) {
	cfg := testConfig(appconfig.Delivery{Transport: appconfig.TransportSMTP, SMTPHost: "smtp.example.com"})
	srv, err := newServer(context.Background(), cfg, logging.New("error"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":"Jane","phone":"555-0100","email":"jane@example.com"}`))
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var resp struct {
		Error   string          `json:"error"`
		Missing map[string]bool `json:"missing"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "SMTP not configured.", resp.Error)
	assert.True(t, resp.Missing["SMTP_PASS"])
	assert.False(t, resp.Missing["SMTP_HOST"])
}
