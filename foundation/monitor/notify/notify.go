// Package notify publishes push notifications through an ntfy server.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 5 * time.Second

// NotificationError indicates a notification could not be delivered. Delivery
// is best-effort; callers log the error and retry on a later cycle.
type NotificationError struct {
	Topic string
	Err   error
}

// Error implements the error interface.
func (e *NotificationError) Error() string {
	return fmt.Sprintf("publishing to topic %s: %s", e.Topic, e.Err)
}

// Unwrap exposes the underlying delivery error.
func (e *NotificationError) Unwrap() error {
	return e.Err
}

// Notifier publishes messages to a single ntfy topic.
type Notifier struct {
	server string
	topic  string
	http   *http.Client
}

// New constructs a Notifier for the specified ntfy server and topic.
func New(server string, topic string, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Notifier{
		server: strings.TrimRight(server, "/"),
		topic:  topic,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// Topic returns the topic this Notifier publishes to.
func (n *Notifier) Topic() string {
	return n.topic
}

// Send publishes a plain-text message with the specified title. Any transport
// failure or non-2xx status is reported as a NotificationError.
func (n *Notifier) Send(ctx context.Context, title string, message string) error {
	url := n.server + "/" + n.topic

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(message))
	if err != nil {
		return &NotificationError{Topic: n.topic, Err: err}
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Title", title)
	req.Header.Set("Tags", "tada,rocket")

	resp, err := n.http.Do(req)
	if err != nil {
		return &NotificationError{Topic: n.topic, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &NotificationError{Topic: n.topic, Err: fmt.Errorf("status code %d", resp.StatusCode)}
	}

	return nil
}
