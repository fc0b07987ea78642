package notifier

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// HTTPNotifier posts user notifications (outbid, won, lost, settlement,
// token-overdue) to the external notification service. Delivery is fire
// and forget: a failed notification is logged, never retried here and
// never allowed to affect committed auction state.
type HTTPNotifier struct {
	endpoint string
	client   *http.Client
}

func NewHTTPNotifier(endpoint string) *HTTPNotifier {
	return &HTTPNotifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

type notificationPayload struct {
	UserID  string         `json:"user_id"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
	SentAt  time.Time      `json:"sent_at"`
}

func (n *HTTPNotifier) Notify(userID string, event string, payload map[string]any) {
	go func() {
		body, err := json.Marshal(notificationPayload{
			UserID:  userID,
			Event:   event,
			Payload: payload,
			SentAt:  time.Now(),
		})
		if err != nil {
			slog.Error("failed to marshal notification", "event", event, "error", err.Error())
			return
		}

		req, err := http.NewRequest(http.MethodPost, n.endpoint, bytes.NewBuffer(body))
		if err != nil {
			slog.Error("failed to create notification request", "event", event, "error", err.Error())
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			slog.Error("notification delivery failed", "event", event, "user_id", userID, "error", err.Error())
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			slog.Warn("notification service returned non-2xx", "event", event, "status", resp.StatusCode)
		}
	}()
}
