package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Default returns a Config populated with the documented defaults.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Addr: ":8080"},
		Logging: LoggingConfig{Level: "info"},
		Pipeline: PipelineConfig{
			ShortThreshold:              3000,
			LongThreshold:               10000,
			MaxContentForAI:             10000,
			MaxTextLength:               100000,
			MaxMediaMB:                  100,
			MinPDFChars:                 500,
			MaxPDFPages:                 25,
			OCRLanguages:                "eng+hin",
			JurisdictionDefault:         "India",
			ReaderProxyURL:              "https://r.jina.ai/",
			FetchTimeoutSeconds:         60,
			ReasonerTimeoutSeconds:      30,
			TranscribeTimeoutSeconds:    180,
			AudioDownloadTimeoutSeconds: 120,
			MaxRetries:                  2,
			BackoffBaseMS:               800,
			BrowserPoolSize:             3,
			BrowserMaxAgeMins:           30,
		},
		Analysis: AnalysisConfig{
			LightModel:         "gemini-2.5-flash",
			HeavyModel:         "gemini-2.5-pro",
			FallbackModel:      "gemini-2.0-flash",
			TranslateModel:     "gemini-2.5-flash",
			OCRModel:           "gemini-2.5-flash",
			FailsafeReanalysis: true,
		},
		Rules: RulesConfig{
			Root:      "rulepacks",
			HotReload: true,
		},
		Database: DatabaseConfig{Mode: "inline"},
	}
}

// LoadConfig reads the YAML file at configPath over the defaults and then
// applies environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return nil, errors.New("config path is required")
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overlays the documented environment variables onto cfg.
func applyEnv(cfg *Config) {
	setInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(name string, dst *bool) {
		if v := os.Getenv(name); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	setString := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	p := &cfg.Pipeline
	setInt("SHORT_THRESHOLD", &p.ShortThreshold)
	setInt("LONG_THRESHOLD", &p.LongThreshold)
	setInt("MAX_CONTENT_FOR_AI", &p.MaxContentForAI)
	setInt("MAX_TEXT_LENGTH", &p.MaxTextLength)
	setInt("MAX_MEDIA_SIZE", &p.MaxMediaMB)
	setInt("MIN_PDF_CHARS", &p.MinPDFChars)
	setInt("MAX_PDF_PAGES", &p.MaxPDFPages)
	setString("OCR_LANGUAGES", &p.OCRLanguages)
	setBool("ENABLE_HEADLESS_BROWSER", &p.EnableHeadlessBrowser)
	setBool("ENABLE_AUDIO_DOWNLOAD", &p.EnableAudioDownload)
	setString("JURISDICTION_DEFAULT", &p.JurisdictionDefault)

	setString("COMPLIAD_LISTEN_ADDR", &cfg.Server.Addr)
	setString("COMPLIAD_LOG_LEVEL", &cfg.Logging.Level)
	setString("COMPLIAD_RULES_ROOT", &cfg.Rules.Root)
	setString("COMPLIAD_DB_DSN", &cfg.Database.DSN)
}
