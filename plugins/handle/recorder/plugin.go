// Package recorder persists completed audits from the event bus. It is
// the deferred-persistence alternative to the pipeline's inline save.
package recorder

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bearslyricattack/CompliAd/pkg/config"
	"github.com/bearslyricattack/CompliAd/pkg/constants"
	"github.com/bearslyricattack/CompliAd/pkg/eventbus"
	"github.com/bearslyricattack/CompliAd/pkg/logger"
	"github.com/bearslyricattack/CompliAd/pkg/metrics"
	"github.com/bearslyricattack/CompliAd/pkg/models"
	"github.com/bearslyricattack/CompliAd/pkg/plugin"
	"github.com/bearslyricattack/CompliAd/pkg/store"
)

const (
	pluginName = constants.HandleRecorderName
	pluginType = constants.HandleRecorderPluginType
)

func init() {
	plugin.PluginFactories[pluginName] = func() plugin.Plugin {
		return &RecorderPlugin{
			log: logger.GetLogger().WithField("plugin", pluginName),
		}
	}
}

// RecorderPlugin mirrors completed audit records into the audit store.
type RecorderPlugin struct {
	log   logger.Logger
	store *store.MySQL
}

// Settings configures the recorder's own database connection.
type Settings struct {
	DSN string `json:"dsn"`
}

func (p *RecorderPlugin) Name() string { return pluginName }
func (p *RecorderPlugin) Type() string { return pluginType }

func (p *RecorderPlugin) Start(ctx context.Context, pluginConfig config.PluginConfig, eventBus *eventbus.EventBus) error {
	var settings Settings
	if pluginConfig.Settings != "" {
		if err := json.Unmarshal([]byte(pluginConfig.Settings), &settings); err != nil {
			return err
		}
	}
	if settings.DSN == "" {
		return errors.New("recorder plugin needs a database dsn")
	}

	s, err := store.Open(settings.DSN)
	if err != nil {
		return err
	}
	p.store = s

	subscribe := eventBus.Subscribe(constants.AuditCompletedTopic)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("Recorder plugin panic", logger.Fields{"panic": r})
			}
		}()
		for {
			select {
			case event, ok := <-subscribe:
				if !ok {
					p.log.Info("Recorder plugin event channel closed")
					return
				}
				record, ok := event.Payload.(*models.AuditRecord)
				if !ok {
					p.log.Error("Unexpected event payload", logger.Fields{"type": event.Payload})
					continue
				}
				if err := p.store.Save(ctx, record); err != nil {
					metrics.PersistenceFailuresTotal.Inc()
					p.log.Error("Failed to persist audit record", logger.Fields{
						"audit_id": record.ID,
						"error":    err.Error(),
					})
				}
			case <-ctx.Done():
				p.log.Info("Recorder plugin stopped")
				return
			}
		}
	}()
	return nil
}

func (p *RecorderPlugin) Stop(_ context.Context) error {
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}
