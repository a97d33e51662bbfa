package constants

const (
	AuditCompletedTopic = "audit.completed"
	AuditFailedTopic    = "audit.failed"
)
