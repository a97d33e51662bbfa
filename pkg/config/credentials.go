package config

import "os"

// CredentialsProvider supplies secrets for the external services. The
// pipeline never reads credential environment variables directly.
type CredentialsProvider interface {
	GeminiAPIKey() string
	OpenAIAPIKey() string
	DatabaseDSN() string
	WebhookURL() string
}

// EnvCredentials reads credentials from the process environment.
type EnvCredentials struct{}

func (EnvCredentials) GeminiAPIKey() string { return os.Getenv("GEMINI_API_KEY") }
func (EnvCredentials) OpenAIAPIKey() string { return os.Getenv("OPENAI_API_KEY") }
func (EnvCredentials) DatabaseDSN() string  { return os.Getenv("COMPLIAD_DB_DSN") }
func (EnvCredentials) WebhookURL() string   { return os.Getenv("COMPLIAD_WEBHOOK_URL") }
