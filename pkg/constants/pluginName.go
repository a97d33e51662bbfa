package constants

const (
	HandleWebhookName  = "Webhook"
	HandleRecorderName = "Recorder"
)
