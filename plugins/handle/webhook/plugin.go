// Package webhook posts card-style alerts for non-compliant audits.
package webhook

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bearslyricattack/CompliAd/pkg/config"
	"github.com/bearslyricattack/CompliAd/pkg/constants"
	"github.com/bearslyricattack/CompliAd/pkg/eventbus"
	"github.com/bearslyricattack/CompliAd/pkg/logger"
	"github.com/bearslyricattack/CompliAd/pkg/models"
	"github.com/bearslyricattack/CompliAd/pkg/plugin"
)

const (
	pluginName = constants.HandleWebhookName
	pluginType = constants.HandleWebhookPluginType
)

func init() {
	plugin.PluginFactories[pluginName] = func() plugin.Plugin {
		return &WebhookPlugin{
			log: logger.GetLogger().WithField("plugin", pluginName),
		}
	}
}

// WebhookPlugin subscribes to completed audits and notifies a webhook
// when the report status is Non-Compliant.
type WebhookPlugin struct {
	log      logger.Logger
	notifier *Notifier
	settings Settings
}

// Settings is the plugin's free-form configuration block.
type Settings struct {
	Webhook string `json:"webhook"`
	// MinScore suppresses alerts below this risk score.
	MinScore int `json:"min_score"`
}

func (p *WebhookPlugin) Name() string { return pluginName }
func (p *WebhookPlugin) Type() string { return pluginType }

func (p *WebhookPlugin) loadSettings(raw string) error {
	if raw == "" {
		return errors.New("webhook plugin settings are empty")
	}
	var s Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return err
	}
	if s.Webhook == "" {
		return errors.New("webhook url is required")
	}
	p.settings = s
	return nil
}

func (p *WebhookPlugin) Start(ctx context.Context, pluginConfig config.PluginConfig, eventBus *eventbus.EventBus) error {
	if err := p.loadSettings(pluginConfig.Settings); err != nil {
		return err
	}
	p.notifier = NewNotifier(p.settings.Webhook)

	subscribe := eventBus.Subscribe(constants.AuditCompletedTopic)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("Webhook plugin panic", logger.Fields{"panic": r})
			}
		}()
		for {
			select {
			case event, ok := <-subscribe:
				if !ok {
					p.log.Info("Webhook plugin event channel closed")
					return
				}
				record, ok := event.Payload.(*models.AuditRecord)
				if !ok {
					p.log.Error("Unexpected event payload", logger.Fields{"type": event.Payload})
					continue
				}
				p.handle(record)
			case <-ctx.Done():
				p.log.Info("Webhook plugin stopped")
				return
			}
		}
	}()
	return nil
}

func (p *WebhookPlugin) handle(record *models.AuditRecord) {
	if record.Report == nil || record.Report.Status != models.StatusNonCompliant {
		return
	}
	if record.Report.Score < p.settings.MinScore {
		return
	}
	if err := p.notifier.SendAuditAlert(record); err != nil {
		p.log.Error("Failed to send audit alert", logger.Fields{
			"audit_id": record.ID,
			"error":    err.Error(),
		})
	}
}

func (p *WebhookPlugin) Stop(_ context.Context) error {
	return nil
}
