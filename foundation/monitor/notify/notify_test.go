package notify_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abumaher/syncwatch/foundation/monitor/notify"
)

func TestSend(t *testing.T) {
	var gotPath, gotTitle, gotBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTitle = r.Header.Get("Title")

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("error: reading body: %v", err)
		}
		gotBody = string(body)
	}))
	defer srv.Close()

	n := notify.New(srv.URL, "alerts", time.Second)

	if err := n.Send(context.Background(), "Node synced", "node-a is done"); err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	if gotPath != "/alerts" {
		t.Errorf("error: expected topic path /alerts, got %q", gotPath)
	}
	if gotTitle != "Node synced" {
		t.Errorf("error: expected title header, got %q", gotTitle)
	}
	if gotBody != "node-a is done" {
		t.Errorf("error: expected message body, got %q", gotBody)
	}
}

func TestSendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := notify.New(srv.URL, "alerts", time.Second)

	err := n.Send(context.Background(), "Node synced", "node-a is done")
	if err == nil {
		t.Fatal("error: expected an error for a failed publish")
	}

	var notifErr *notify.NotificationError
	if !errors.As(err, &notifErr) {
		t.Errorf("error: expected a NotificationError, got %T", err)
	}
}

func TestSendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	n := notify.New(srv.URL, "alerts", time.Second)

	err := n.Send(context.Background(), "Node synced", "node-a is done")
	if err == nil {
		t.Fatal("error: expected an error for an unreachable server")
	}

	var notifErr *notify.NotificationError
	if !errors.As(err, &notifErr) {
		t.Errorf("error: expected a NotificationError, got %T", err)
	}
}
