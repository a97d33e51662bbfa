package constants

const (
	HandleWebhookPluginType  = "Handle.Webhook"
	HandleRecorderPluginType = "Handle.Recorder"
)
