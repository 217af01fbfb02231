package pushsvc

import (
	"context"
	"sync"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/notify"
)

// Pushed is a notification sent by a ConsolePusher.
type Pushed struct {
	Token        string
	Notification notify.Notification
}

// ConsolePusher logs notifications instead of sending them. Used when FCM is not configured.
type ConsolePusher struct {
	logger core.Logger

	mu   sync.Mutex
	sent []Pushed
}

var _ notify.Pusher = (*ConsolePusher)(nil)

func NewConsolePusher(logger core.Logger) *ConsolePusher {
	return &ConsolePusher{logger: logger}
}

func (p *ConsolePusher) Push(_ context.Context, token string, n notify.Notification) error {
	p.mu.Lock()
	p.sent = append(p.sent, Pushed{Token: token, Notification: n})
	p.mu.Unlock()

	p.logger.Info("push notification", map[string]interface{}{"token": token, "title": n.Title, "body": n.Body})
	return nil
}

// Sent returns the notifications pushed so far.
func (p *ConsolePusher) Sent() []Pushed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Pushed(nil), p.sent...)
}
