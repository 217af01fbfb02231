package pushsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/notify"
)

const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

var fcmBaseURL = "https://fcm.googleapis.com"

// FCMPusher sends notifications through the Firebase Cloud Messaging HTTP v1 API.
type FCMPusher struct {
	url    string
	client *http.Client
}

var _ notify.Pusher = (*FCMPusher)(nil)

// NewFCMPusher authenticates with the service account key (JSON) of conf.FCM.
func NewFCMPusher(ctx context.Context, conf *core.Config) (*FCMPusher, error) {
	jwtConf, err := google.JWTConfigFromJSON([]byte(conf.FCM.ServiceAccountKey), fcmScope)
	if err != nil {
		return nil, errors.Wrap(err, "parsing service account key")
	}
	return newFCMPusher(conf.FCM.ProjectID, oauth2.NewClient(ctx, jwtConf.TokenSource(ctx))), nil
}

func newFCMPusher(projectID string, client *http.Client) *FCMPusher {
	return &FCMPusher{
		url:    fmt.Sprintf("%s/v1/projects/%s/messages:send", fcmBaseURL, projectID),
		client: client,
	}
}

type (
	fcmNotification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}

	fcmMessage struct {
		Token        string          `json:"token"`
		Notification fcmNotification `json:"notification"`
		Android      struct {
			Priority string `json:"priority"`
		} `json:"android"`
	}
)

func (p *FCMPusher) Push(ctx context.Context, token string, n notify.Notification) error {
	msg := fcmMessage{Token: token, Notification: fcmNotification{Title: n.Title, Body: n.Body}}
	msg.Android.Priority = "HIGH"

	body, err := json.Marshal(map[string]interface{}{"message": msg})
	if err != nil {
		return errors.Wrap(err, "encoding message")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "sending message")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.Errorf("fcm http %d: %s", resp.StatusCode, raw)
	}
	return nil
}
