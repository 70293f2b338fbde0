package client

import (
	"context"
	"net/url"
	"strings"

	"annah-server/models"

	"github.com/gorilla/websocket"
)

// Sink consumes broadcast messages from the server's live-update channel,
// surfaces them as in-app alerts and, when the message asks for it, requests
// a desktop notification.
type Sink struct {
	url      string
	notifier *Notifier
	onAlert  func(message string)
}

// NewSink prepares a sink for the given server base URL (http or https) and
// auth token. onAlert receives the in-app alert text for every reminder.
func NewSink(serverURL, token string, notifier *Notifier, onAlert func(string)) (*Sink, error) {
	wsURL, err := liveUpdateURL(serverURL, token)
	if err != nil {
		return nil, err
	}
	return &Sink{
		url:      wsURL,
		notifier: notifier,
		onAlert:  onAlert,
	}, nil
}

// Run connects and consumes messages until ctx is cancelled or the
// connection drops.
func (s *Sink) Run(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock ReadJSON when the context is cancelled
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var msg models.Notification
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		s.handle(msg)
	}
}

func (s *Sink) handle(msg models.Notification) {
	if msg.Type != models.NotificationTypeReminder {
		return
	}

	s.onAlert(msg.Message)

	if msg.ShowBrowserNotification {
		s.notifier.Show("Task Reminder", msg.Message)
	}
}

// liveUpdateURL turns a server base URL into the websocket endpoint with the
// token attached.
func liveUpdateURL(serverURL, token string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()

	return u.String(), nil
}
