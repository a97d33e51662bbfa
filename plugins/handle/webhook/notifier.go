package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bearslyricattack/CompliAd/pkg/models"
)

// Notifier posts a card-style JSON message to a generic webhook URL.
type Notifier struct {
	WebhookURL string
	HTTPClient *http.Client
}

// NewNotifier creates the notifier with a bounded HTTP client.
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		WebhookURL: webhookURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SendAuditAlert posts a non-compliant audit as an alert card.
func (n *Notifier) SendAuditAlert(record *models.AuditRecord) error {
	if n.WebhookURL == "" {
		return errors.New("webhook url is not set")
	}
	if record == nil || record.Report == nil {
		return errors.New("audit record is empty")
	}
	return n.send(n.buildAlertCard(record))
}

func (n *Notifier) buildAlertCard(record *models.AuditRecord) map[string]any {
	rep := record.Report

	elements := []map[string]any{
		field("🚨 Non-compliant content detected"),
		divider(),
		field(fmt.Sprintf("**Audit ID:** %s", record.ID)),
		field(fmt.Sprintf("**User:** %s", record.UserID)),
		field(fmt.Sprintf("**Content type:** %s", record.ContentType)),
		field(fmt.Sprintf("**Score:** %d / 100", rep.Score)),
		field(fmt.Sprintf("**Summary:** %s", rep.Summary)),
	}

	if len(rep.Violations) > 0 {
		elements = append(elements, divider(), field("**Top violations:**"))
		for i, v := range rep.Violations {
			if i == 3 {
				elements = append(elements, field(fmt.Sprintf("… and %d more", len(rep.Violations)-3)))
				break
			}
			elements = append(elements, field(fmt.Sprintf("• [%s] %s — %s", v.Severity, v.Regulation, v.ViolationTitle)))
		}
	}

	return map[string]any{
		"msg_type": "card",
		"card": map[string]any{
			"header": map[string]any{
				"title":    "Compliance audit alert",
				"template": "red",
			},
			"elements": elements,
		},
	}
}

func field(content string) map[string]any {
	return map[string]any{
		"tag":  "div",
		"text": map[string]any{"content": content, "tag": "md"},
	}
}

func divider() map[string]any {
	return map[string]any{"tag": "hr"}
}

func (n *Notifier) send(message map[string]any) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode webhook message: %w", err)
	}
	resp, err := n.HTTPClient.Post(n.WebhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook answered %d", resp.StatusCode)
	}
	return nil
}
