package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/application/port"
	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
)

func testNotification() port.AlertNotification {
	return port.AlertNotification{
		Category:  valueobject.Disk,
		Severity:  valueobject.SeverityCritical,
		Message:   "Disk usage on / is critically high: 96.5%",
		Timestamp: time.Now(),
	}
}

func TestWebhookSendPostsJSON(t *testing.T) {
	var received webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ch := NewWebhookChannel(server.URL)
	if err := ch.Send(context.Background(), testNotification()); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if received.Category != "disk" || received.Severity != "critical" {
		t.Fatalf("unexpected payload: %+v", received)
	}
	if received.Message == "" {
		t.Fatal("expected message in payload")
	}
}

func TestWebhookSendNon2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ch := NewWebhookChannel(server.URL)
	if err := ch.Send(context.Background(), testNotification()); err == nil {
		t.Fatal("expected error on 502 response")
	}
}

func TestWebhookSendRespectsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ch := NewWebhookChannel(server.URL)
	if err := ch.Send(ctx, testNotification()); err == nil {
		t.Fatal("expected context deadline error")
	}
}
